// internal/domain/report/service.go
package report

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/payment"
)

// Service produces admin reports from order and payment data
type Service struct {
	db *gorm.DB
}

// NewService creates a new report service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SalesSummary is the admin dashboard overview.
// Amounts are in whole Kenyan shillings.
type SalesSummary struct {
	TotalOrders      int64            `json:"total_orders"`
	OrdersByStatus   map[string]int64 `json:"orders_by_status"`
	TotalRevenue     int64            `json:"total_revenue"`
	RevenueThisMonth int64            `json:"revenue_this_month"`
	PendingPayments  int64            `json:"pending_payments"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// TopProduct is one row of the best-sellers report
type TopProduct struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitsSold   int64  `json:"units_sold"`
	Revenue     int64  `json:"revenue"`
}

// DailySales is one row of the sales-over-time report
type DailySales struct {
	Day     string `json:"day"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// Summary builds the sales overview. Revenue counts paid orders only.
func (s *Service) Summary() (*SalesSummary, error) {
	summary := &SalesSummary{
		OrdersByStatus: map[string]int64{},
		GeneratedAt:    time.Now().UTC(),
	}

	if err := s.db.Model(&order.Order{}).Count(&summary.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := s.db.Model(&order.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, c := range counts {
		summary.OrdersByStatus[c.Status] = c.Count
	}

	var totalRevenue *int64
	err = s.db.Model(&order.Order{}).
		Where("payment_status = ?", order.PaymentStatusPaid).
		Select("SUM(total_amount)").
		Scan(&totalRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if totalRevenue != nil {
		summary.TotalRevenue = *totalRevenue
	}

	monthStart := time.Date(time.Now().UTC().Year(), time.Now().UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	var monthRevenue *int64
	err = s.db.Model(&order.Order{}).
		Where("payment_status = ? AND paid_at >= ?", order.PaymentStatusPaid, monthStart).
		Select("SUM(total_amount)").
		Scan(&monthRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	if monthRevenue != nil {
		summary.RevenueThisMonth = *monthRevenue
	}

	err = s.db.Model(&payment.Payment{}).
		Where("status IN ?", []string{payment.StatusQueued, payment.StatusPending}).
		Count(&summary.PendingPayments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending payments: %w", err)
	}

	return summary, nil
}

// TopProducts returns the best-selling products by units across
// paid orders.
func (s *Service) TopProducts(limit int) ([]TopProduct, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var rows []TopProduct
	err := s.db.Model(&order.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) as units_sold, SUM(order_items.line_total) as revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.payment_status = ?", order.PaymentStatusPaid).
		Group("order_items.product_id, order_items.product_name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build top products report: %w", err)
	}
	return rows, nil
}

// SalesByDay returns daily order counts and paid revenue for the
// last n days.
func (s *Service) SalesByDay(days int) ([]DailySales, error) {
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var rows []DailySales
	err := s.db.Model(&order.Order{}).
		Select("DATE(created_at) as day, COUNT(*) as orders, SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END) as revenue", order.PaymentStatusPaid).
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build daily sales report: %w", err)
	}
	return rows, nil
}
