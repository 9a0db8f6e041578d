// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/sokohub/sokohub-backend/internal/domain/product"
)

// Cart represents a user's open shopping cart.
// A user has at most one open cart at a time.
type Cart struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem represents a line in a cart
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"cart_id" gorm:"not null;index:idx_cart_product,unique"`
	ProductID uint      `json:"product_id" gorm:"not null;index:idx_cart_product,unique"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for Cart
func (Cart) TableName() string {
	return "carts"
}

// TableName returns the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal sums quantity times current product price across items.
// Items without a loaded product contribute nothing.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		if item.Product != nil {
			total += int64(item.Quantity) * item.Product.Price
		}
	}
	return total
}

// ItemCount returns the total quantity across all lines
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
