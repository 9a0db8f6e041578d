// internal/domain/feedback/entity.go
package feedback

import (
	"time"

	"gorm.io/gorm"
)

// Feedback represents a customer rating and comment, optionally
// tied to a specific order. Only approved entries are shown publicly.
type Feedback struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"not null;index"`
	OrderID    *uint          `json:"order_id" gorm:"index"`
	Rating     int            `json:"rating" gorm:"not null"`
	Comment    string         `json:"comment" gorm:"type:text"`
	Response   string         `json:"response" gorm:"type:text"`
	IsApproved bool           `json:"is_approved" gorm:"default:false"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for Feedback
func (Feedback) TableName() string {
	return "feedback"
}
