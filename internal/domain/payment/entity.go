// internal/domain/payment/entity.go
package payment

import (
	"time"
)

// Payment status constants. A payment starts QUEUED when the STK push
// is accepted by the provider and settles to paid or failed when the
// provider callback is reconciled.
const (
	StatusQueued  = "QUEUED"
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// Payment represents an M-Pesa payment attempt against an order.
// Amount is in whole Kenyan shillings.
type Payment struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	OrderID           uint       `json:"order_id" gorm:"not null;index"`
	UserID            uint       `json:"user_id" gorm:"not null;index"`
	Amount            int64      `json:"amount" gorm:"not null"`
	Phone             string     `json:"phone" gorm:"not null"`
	Provider          string     `json:"provider" gorm:"not null;default:'m-pesa'"`
	Status            string     `json:"status" gorm:"not null;index"`
	ExternalRef       string     `json:"external_ref" gorm:"uniqueIndex;not null"`
	CheckoutRequestID string     `json:"checkout_request_id" gorm:"uniqueIndex"`
	ResultCode        *int       `json:"result_code"`
	ResultDescription string     `json:"result_description"`
	MpesaReceipt      string     `json:"mpesa_receipt"`
	IsApproved        bool       `json:"is_approved" gorm:"default:false"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName returns the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// IsInFlight reports whether the payment is still awaiting a provider result
func (p *Payment) IsInFlight() bool {
	return p.Status == StatusQueued || p.Status == StatusPending
}

// IsSettled reports whether the provider has delivered a final result
func (p *Payment) IsSettled() bool {
	return p.Status == StatusPaid || p.Status == StatusFailed
}
