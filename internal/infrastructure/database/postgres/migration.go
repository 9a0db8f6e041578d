// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sokohub/sokohub-backend/internal/config"
	"github.com/sokohub/sokohub-backend/internal/domain/cart"
	"github.com/sokohub/sokohub-backend/internal/domain/feedback"
	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/payment"
	"github.com/sokohub/sokohub-backend/internal/domain/product"
	"github.com/sokohub/sokohub-backend/internal/domain/user"
	"github.com/sokohub/sokohub-backend/internal/pkg/auth"
)

// Migration handles schema migrations
type Migration struct {
	db     *gorm.DB
	config *config.Config
}

// NewMigration creates a new migration runner
func NewMigration(db *gorm.DB, cfg *config.Config) *Migration {
	return &Migration{db: db, config: cfg}
}

// RunAutoMigrations migrates all domain models
func (m *Migration) RunAutoMigrations() error {
	models := []interface{}{
		&user.User{},
		&user.Address{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&payment.Payment{},
		&feedback.Feedback{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if err := m.CreateIndexes(); err != nil {
		return err
	}

	logrus.Info("database migrations completed")
	return nil
}

// CreateIndexes creates indexes AutoMigrate cannot express.
// The partial unique index keeps at most one in-flight payment
// per order at the database level.
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_order_in_flight
			ON payments (order_id)
			WHERE status IN ('QUEUED', 'pending')`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_status
			ON orders (user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at
			ON orders (created_at)`,
	}

	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// SeedDevelopmentData inserts an admin account and sample products
// in development environments. It is a no-op when data exists.
func (m *Migration) SeedDevelopmentData() error {
	if !m.config.IsDevelopment() {
		return nil
	}

	var count int64
	if err := m.db.Model(&user.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwords := auth.NewPasswordManager(m.config.Security.BcryptCost)
	hash, err := passwords.HashPassword("Admin1234")
	if err != nil {
		return err
	}

	admin := &user.User{
		Email:        "admin@sokohub.local",
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "User",
		IsActive:     true,
		IsAdmin:      true,
	}
	if err := m.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	products := []product.Product{
		{Name: "Ceramic Mug", Slug: "ceramic-mug", Price: 500, Stock: 100, Category: "kitchen", IsActive: true},
		{Name: "Cotton Tote Bag", Slug: "cotton-tote-bag", Price: 850, Stock: 60, Category: "accessories", IsActive: true},
		{Name: "Scented Candle", Slug: "scented-candle", Price: 1200, Stock: 40, Category: "home", IsActive: true},
	}
	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
	}

	logrus.Info("development data seeded")
	return nil
}
