// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/sokohub/sokohub-backend/internal/config"
	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/payment"
	"github.com/sokohub/sokohub-backend/internal/domain/user"
)

var ErrOrderNotPaid = errors.New("receipt is only available for paid orders")

// Service renders PDF receipts for paid orders
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

type receiptData struct {
	CompanyName  string
	CompanyPhone string
	CompanyEmail string
	OrderNumber  string
	CustomerName string
	Phone        string
	MpesaReceipt string
	PaidAt       string
	Items        []receiptItem
	Total        string
}

type receiptItem struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// GenerateReceipt renders a PDF receipt for a paid order
func (s *Service) GenerateReceipt(o *order.Order, u *user.User, p *payment.Payment) ([]byte, error) {
	if o == nil || !o.IsPaid() {
		return nil, ErrOrderNotPaid
	}

	data := receiptData{
		CompanyName:  s.config.App.CompanyName,
		CompanyPhone: s.config.App.CompanyPhone,
		CompanyEmail: s.config.App.CompanyEmail,
		OrderNumber:  o.OrderNumber,
		Total:        formatKES(o.TotalAmount),
	}
	if u != nil {
		data.CustomerName = u.FullName()
		data.Phone = u.Phone
	}
	if p != nil {
		data.MpesaReceipt = p.MpesaReceipt
		data.Phone = p.Phone
	}
	if o.PaidAt != nil {
		data.PaidAt = o.PaidAt.Format("02 Jan 2006 15:04")
	} else {
		data.PaidAt = time.Now().UTC().Format("02 Jan 2006 15:04")
	}

	for _, item := range o.Items {
		data.Items = append(data.Items, receiptItem{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: formatKES(item.UnitPrice),
			LineTotal: formatKES(item.LineTotal),
		})
	}

	html, err := renderReceiptHTML(&data)
	if err != nil {
		return nil, err
	}

	return renderPDF(html)
}

func renderReceiptHTML(data *receiptData) (string, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse receipt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.String(), nil
}

func renderPDF(html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(html)))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

func formatKES(amount int64) string {
	return fmt.Sprintf("KES %d", amount)
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, sans-serif; color: #222; margin: 40px; }
  .header { border-bottom: 2px solid #222; padding-bottom: 12px; margin-bottom: 24px; }
  .header h1 { margin: 0; font-size: 22px; }
  .meta { margin-bottom: 24px; font-size: 13px; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
  th { background: #f5f5f5; }
  .total { text-align: right; margin-top: 16px; font-size: 16px; font-weight: bold; }
  .footer { margin-top: 40px; font-size: 11px; color: #777; }
</style>
</head>
<body>
  <div class="header">
    <h1>{{.CompanyName}}</h1>
    <div>{{.CompanyPhone}} &middot; {{.CompanyEmail}}</div>
  </div>
  <div class="meta">
    <div><strong>Receipt for order:</strong> {{.OrderNumber}}</div>
    <div><strong>Customer:</strong> {{.CustomerName}}</div>
    <div><strong>Phone:</strong> {{.Phone}}</div>
    {{if .MpesaReceipt}}<div><strong>M-Pesa receipt:</strong> {{.MpesaReceipt}}</div>{{end}}
    <div><strong>Paid at:</strong> {{.PaidAt}}</div>
  </div>
  <table>
    <tr><th>Item</th><th>Qty</th><th>Unit price</th><th>Line total</th></tr>
    {{range .Items}}
    <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.LineTotal}}</td></tr>
    {{end}}
  </table>
  <div class="total">Total: {{.Total}}</div>
  <div class="footer">Thank you for shopping with {{.CompanyName}}.</div>
</body>
</html>`
