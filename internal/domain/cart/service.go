// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sokohub/sokohub-backend/internal/domain/product"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrNotCartOwner     = errors.New("cart does not belong to user")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrOutOfStock       = errors.New("insufficient stock")
)

// Service handles shopping cart logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new cart service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AddItemRequest represents an add-to-cart payload
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a quantity change payload
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// GetOrCreate returns the user's open cart, creating one if needed.
// Items are loaded with their products.
func (s *Service) GetOrCreate(userID uint) (*Cart, error) {
	var c Cart
	err := s.db.Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c = Cart{UserID: userID}
	if err := s.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &c, nil
}

// Get returns a cart by ID with items, enforcing ownership
func (s *Service) Get(userID, cartID uint) (*Cart, error) {
	var c Cart
	err := s.db.Preload("Items.Product").First(&c, cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.UserID != userID {
		return nil, ErrNotCartOwner
	}
	return &c, nil
}

// AddItem puts a product into the user's cart, merging quantity
// with an existing line for the same product.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*Cart, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var p product.Product
	if err := s.db.First(&p, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	c, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var item CartItem
	err = s.db.Where("cart_id = ? AND product_id = ?", c.ID, req.ProductID).
		First(&item).Error
	switch {
	case err == nil:
		newQty := item.Quantity + req.Quantity
		if !p.InStock(newQty) {
			return nil, ErrOutOfStock
		}
		if err := s.db.Model(&item).Update("quantity", newQty).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !p.InStock(req.Quantity) {
			return nil, ErrOutOfStock
		}
		item = CartItem{
			CartID:    c.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to check cart item: %w", err)
	}

	return s.Get(userID, c.ID)
}

// UpdateItem sets the quantity of a cart line, enforcing ownership
func (s *Service) UpdateItem(userID, itemID uint, req *UpdateItemRequest) (*Cart, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, c, err := s.loadItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	var p product.Product
	if err := s.db.First(&p, item.ProductID).Error; err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !p.InStock(req.Quantity) {
		return nil, ErrOutOfStock
	}

	if err := s.db.Model(item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.Get(userID, c.ID)
}

// RemoveItem deletes a line from the cart, enforcing ownership
func (s *Service) RemoveItem(userID, itemID uint) (*Cart, error) {
	item, c, err := s.loadItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.Get(userID, c.ID)
}

// Clear removes all items from the user's cart
func (s *Service) Clear(userID uint) error {
	c, err := s.GetOrCreate(userID)
	if err != nil {
		return err
	}
	if err := s.db.Where("cart_id = ?", c.ID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Service) loadItem(userID, itemID uint) (*CartItem, *Cart, error) {
	var item CartItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCartItemNotFound
		}
		return nil, nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	var c Cart
	if err := s.db.First(&c, item.CartID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.UserID != userID {
		return nil, nil, ErrNotCartOwner
	}

	return &item, &c, nil
}
