// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product in the catalog.
// Prices are stored as whole Kenyan shillings.
type Product struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null;index"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       int64          `json:"price" gorm:"not null"`
	Stock       int            `json:"stock" gorm:"default:0"`
	Category    string         `json:"category" gorm:"index"`
	ImageURL    string         `json:"image_url"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}

// IsAvailable checks whether the product can be ordered
func (p *Product) IsAvailable() bool {
	return p.IsActive && p.Stock > 0
}

// InStock checks whether the requested quantity can be fulfilled
func (p *Product) InStock(quantity int) bool {
	return p.IsActive && p.Stock >= quantity
}
