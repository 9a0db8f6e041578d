// internal/domain/user/entity.go
package user

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	FirstName    string         `json:"first_name" gorm:"not null"`
	LastName     string         `json:"last_name" gorm:"not null"`
	Phone        string         `json:"phone"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	IsAdmin      bool           `json:"is_admin" gorm:"default:false"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	Addresses []Address `json:"addresses,omitempty" gorm:"foreignKey:UserID"`
}

// Address represents a delivery address for a user
type Address struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Label     string         `json:"label"`
	Line1     string         `json:"line1" gorm:"not null"`
	Line2     string         `json:"line2"`
	City      string         `json:"city" gorm:"not null"`
	County    string         `json:"county"`
	Country   string         `json:"country" gorm:"default:'KE'"`
	Phone     string         `json:"phone"`
	IsDefault bool           `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// TableName returns the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// FullName returns the user's full name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CanLogin checks whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsActive && u.DeletedAt.Time.IsZero()
}
