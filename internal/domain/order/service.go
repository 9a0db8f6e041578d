// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sokohub/sokohub-backend/internal/domain/cart"
	"github.com/sokohub/sokohub-backend/internal/domain/user"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOrderOwner       = errors.New("order does not belong to user")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
)

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// Service handles order business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new order service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateFromCartRequest represents a checkout payload
type CreateFromCartRequest struct {
	CartID    uint   `json:"cart_id" binding:"required"`
	AddressID *uint  `json:"address_id"`
	Notes     string `json:"notes"`
}

// CreateFromCart converts a cart into an order inside a single
// transaction. The cart and its items are loaded with current product
// prices, each line's unit price is snapshotted onto the order item,
// the total is computed from those snapshots, and the cart is deleted.
// Any failure rolls the whole conversion back.
func (s *Service) CreateFromCart(userID uint, req *CreateFromCartRequest) (*Order, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var c cart.Cart
	err := tx.Preload("Items.Product").First(&c, req.CartID).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if c.UserID != userID {
		tx.Rollback()
		return nil, cart.ErrNotCartOwner
	}

	if c.IsEmpty() {
		tx.Rollback()
		return nil, ErrCartEmpty
	}

	if req.AddressID != nil {
		var addr user.Address
		if err := tx.First(&addr, *req.AddressID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, user.ErrAddressNotFound
			}
			return nil, fmt.Errorf("failed to load address: %w", err)
		}
		if addr.UserID != userID {
			tx.Rollback()
			return nil, user.ErrNotAddressOwner
		}
	}

	o := &Order{
		OrderNumber:   generateOrderNumber(),
		UserID:        userID,
		Status:        StatusPending,
		PaymentStatus: PaymentStatusPending,
		AddressID:     req.AddressID,
		Notes:         req.Notes,
	}

	var total int64
	for _, item := range c.Items {
		if item.Product == nil {
			tx.Rollback()
			return nil, fmt.Errorf("cart item %d has no product", item.ID)
		}
		total += int64(item.Quantity) * item.Product.Price
	}
	o.TotalAmount = total

	if err := tx.Create(o).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range c.Items {
		line := OrderItem{
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
			LineTotal:   int64(item.Quantity) * item.Product.Price,
		}
		if err := tx.Create(&line).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear cart items: %w", err)
	}
	if err := tx.Delete(&c).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return s.getWithItems(o.ID)
}

// Get returns an order with items, enforcing ownership
func (s *Service) Get(userID, orderID uint) (*Order, error) {
	o, err := s.getWithItems(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

// GetByID returns an order with items without an ownership check.
// Intended for admin and internal callers.
func (s *Service) GetByID(orderID uint) (*Order, error) {
	return s.getWithItems(orderID)
}

// ListForUser returns the user's orders, newest first
func (s *Service) ListForUser(userID uint, page, limit int) ([]Order, int64, error) {
	return s.list(s.db.Where("user_id = ?", userID), page, limit)
}

// ListAll returns all orders for admins, optionally filtered by status
func (s *Service) ListAll(status string, page, limit int) ([]Order, int64, error) {
	query := s.db.Model(&Order{})
	if status != "" {
		if !validStatuses[status] {
			return nil, 0, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}
	return s.list(query, page, limit)
}

// UpdateStatus sets the fulfilment status of an order
func (s *Service) UpdateStatus(orderID uint, status string) (*Order, error) {
	if !validStatuses[status] {
		return nil, ErrInvalidStatus
	}

	o, err := s.getWithItems(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(o).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	o.Status = status
	return o, nil
}

// Cancel cancels a pending, unpaid order. The caller must own it.
func (s *Service) Cancel(userID, orderID uint) (*Order, error) {
	o, err := s.Get(userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, ErrOrderNotCancellable
	}

	if err := s.db.Model(o).Update("status", StatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	o.Status = StatusCancelled
	return o, nil
}

// MarkPaid records successful payment against an order
func (s *Service) MarkPaid(tx *gorm.DB, orderID uint) error {
	if tx == nil {
		tx = s.db
	}
	now := time.Now().UTC()
	result := tx.Model(&Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status": PaymentStatusPaid,
			"status":         StatusProcessing,
			"paid_at":        now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark order paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaymentFailed records a failed payment attempt against an order
func (s *Service) MarkPaymentFailed(tx *gorm.DB, orderID uint) error {
	if tx == nil {
		tx = s.db
	}
	return tx.Model(&Order{}).
		Where("id = ? AND payment_status <> ?", orderID, PaymentStatusPaid).
		Update("payment_status", PaymentStatusFailed).Error
}

func (s *Service) list(query *gorm.DB, page, limit int) ([]Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

func (s *Service) getWithItems(orderID uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").First(&o, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &o, nil
}

func generateOrderNumber() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), short)
}
