// internal/domain/user/address_service.go
package user

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrNotAddressOwner = errors.New("address does not belong to user")
)

// AddressService manages a user's delivery addresses
type AddressService struct {
	db *gorm.DB
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// AddressRequest represents address create/update payloads
type AddressRequest struct {
	Label     string `json:"label"`
	Line1     string `json:"line1" binding:"required"`
	Line2     string `json:"line2"`
	City      string `json:"city" binding:"required"`
	County    string `json:"county"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}

// Create adds a new address for the user
func (s *AddressService) Create(userID uint, req *AddressRequest) (*Address, error) {
	addr := &Address{
		UserID:    userID,
		Label:     req.Label,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		County:    req.County,
		Country:   req.Country,
		Phone:     req.Phone,
		IsDefault: req.IsDefault,
	}
	if addr.Country == "" {
		addr.Country = "KE"
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := tx.Model(&Address{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(addr).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return addr, nil
}

// List returns all addresses belonging to the user
func (s *AddressService) List(userID uint) ([]Address, error) {
	var addresses []Address
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Get returns one address, enforcing ownership
func (s *AddressService) Get(userID, addressID uint) (*Address, error) {
	var addr Address
	if err := s.db.First(&addr, addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	if addr.UserID != userID {
		return nil, ErrNotAddressOwner
	}
	return &addr, nil
}

// Update modifies an existing address, enforcing ownership
func (s *AddressService) Update(userID, addressID uint, req *AddressRequest) (*Address, error) {
	addr, err := s.Get(userID, addressID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault && !addr.IsDefault {
			if err := tx.Model(&Address{}).
				Where("user_id = ?", userID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(addr).Updates(map[string]interface{}{
			"label":      req.Label,
			"line1":      req.Line1,
			"line2":      req.Line2,
			"city":       req.City,
			"county":     req.County,
			"phone":      req.Phone,
			"is_default": req.IsDefault,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return s.Get(userID, addressID)
}

// Delete removes an address, enforcing ownership
func (s *AddressService) Delete(userID, addressID uint) error {
	addr, err := s.Get(userID, addressID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(addr).Error; err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
