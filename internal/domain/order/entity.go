// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"

	"github.com/sokohub/sokohub-backend/internal/domain/product"
)

// Order status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Payment status constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Order represents a customer order.
// TotalAmount is in whole Kenyan shillings.
type Order struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	OrderNumber   string         `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID        uint           `json:"user_id" gorm:"not null;index"`
	Status        string         `json:"status" gorm:"not null;default:'pending';index"`
	PaymentStatus string         `json:"payment_status" gorm:"not null;default:'pending';index"`
	TotalAmount   int64          `json:"total_amount" gorm:"not null"`
	AddressID     *uint          `json:"address_id"`
	Notes         string         `json:"notes"`
	PaidAt        *time.Time     `json:"paid_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem represents a line in an order. Name and UnitPrice are
// snapshots taken at order time and never change afterwards.
type OrderItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     uint      `json:"order_id" gorm:"not null;index"`
	ProductID   uint      `json:"product_id" gorm:"not null"`
	ProductName string    `json:"product_name" gorm:"not null"`
	UnitPrice   int64     `json:"unit_price" gorm:"not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	LineTotal   int64     `json:"line_total" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	Product *product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// IsPaid reports whether the order has been paid for
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// CanBeCancelled reports whether the order may still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending && !o.IsPaid()
}
