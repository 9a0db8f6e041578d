// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sokohub/sokohub-backend/internal/config"
	"github.com/sokohub/sokohub-backend/internal/domain/order"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrPaymentInFlight  = errors.New("a payment for this order is already in progress")
	ErrInvalidAmount    = errors.New("payment amount must be greater than zero")
	ErrAmountMismatch   = errors.New("payment amount does not match the order total")
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrPaymentNotPaid   = errors.New("payment has not been completed")
)

var phonePattern = regexp.MustCompile(`^254[17]\d{8}$`)

// STKPusher initiates an STK push with the payment provider
type STKPusher interface {
	InitiateSTKPush(amount int64, phone, externalRef string) (*STKPushResponse, error)
}

// Service handles payment business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	orders      *order.Service
	provider    STKPusher
}

// NewService creates a new payment service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, orders *order.Service, provider STKPusher) *Service {
	if provider == nil {
		provider = NewPayheroClient(&cfg.External.Payhero)
	}
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		orders:      orders,
		provider:    provider,
	}
}

// InitiateRequest represents a payment initiation payload. Amount is
// the total the client believes it is paying; it must match the
// order's stored total exactly.
type InitiateRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

// Initiate starts an M-Pesa STK push for an order. The order must
// belong to the user, be unpaid, and have no payment already in
// flight. A payment row is persisted only after the provider has
// accepted the push and returned a checkout request id.
func (s *Service) Initiate(ctx context.Context, userID uint, req *InitiateRequest) (*Payment, error) {
	o, err := s.orders.GetByID(req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, order.ErrNotOrderOwner
	}
	if o.IsPaid() {
		return nil, ErrOrderAlreadyPaid
	}
	if req.Amount <= 0 || o.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Amount != o.TotalAmount {
		return nil, ErrAmountMismatch
	}

	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	unlock, err := s.acquireOrderLock(ctx, o.ID)
	if err != nil {
		return nil, ErrPaymentInFlight
	}
	defer unlock()

	var inFlight Payment
	err = s.db.Where("order_id = ? AND status IN ?", o.ID, []string{StatusQueued, StatusPending}).
		First(&inFlight).Error
	if err == nil {
		return nil, ErrPaymentInFlight
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check in-flight payments: %w", err)
	}

	externalRef := fmt.Sprintf("PAY-%d-%d-%d", userID, time.Now().UnixMilli(), o.ID)

	pushResp, err := s.provider.InitiateSTKPush(o.TotalAmount, phone, externalRef)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id": o.ID,
			"error":    err.Error(),
		}).Warn("STK push failed")
		return nil, err
	}

	p := &Payment{
		OrderID:           o.ID,
		UserID:            userID,
		Amount:            o.TotalAmount,
		Phone:             phone,
		Provider:          s.config.External.Payhero.Provider,
		Status:            StatusQueued,
		ExternalRef:       externalRef,
		CheckoutRequestID: pushResp.CheckoutRequestID,
	}

	if err := s.db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"payment_id":          p.ID,
		"order_id":            o.ID,
		"checkout_request_id": p.CheckoutRequestID,
	}).Info("payment queued")

	return p, nil
}

// CallbackRequest is the provider callback payload used to reconcile
// a queued payment against its final result.
type CallbackRequest struct {
	CheckoutRequestID string `json:"checkout_request_id" binding:"required"`
	ResultCode        int    `json:"result_code"`
	ResultDescription string `json:"result_description"`
	MpesaReceipt      string `json:"mpesa_receipt"`
}

// Reconcile applies a provider callback to the matching payment.
// Reconciliation is idempotent: replays of an already settled
// payment return it unchanged.
func (s *Service) Reconcile(req *CallbackRequest) (*Payment, error) {
	var p Payment
	err := s.db.Where("checkout_request_id = ?", req.CheckoutRequestID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	if p.IsSettled() {
		return &p, nil
	}

	now := time.Now().UTC()
	success := req.ResultCode == 0

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", tx.Error)
	}

	updates := map[string]interface{}{
		"result_code":        req.ResultCode,
		"result_description": req.ResultDescription,
		"completed_at":       now,
	}
	if success {
		updates["status"] = StatusPaid
		updates["mpesa_receipt"] = req.MpesaReceipt
	} else {
		updates["status"] = StatusFailed
	}

	result := tx.Model(&Payment{}).
		Where("id = ? AND status IN ?", p.ID, []string{StatusQueued, StatusPending}).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost the race with another callback delivery
		tx.Rollback()
		return s.GetByCheckoutRequestID(req.CheckoutRequestID)
	}

	if success {
		if err := s.orders.MarkPaid(tx, p.OrderID); err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		if err := s.orders.MarkPaymentFailed(tx, p.OrderID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"payment_id":          p.ID,
		"checkout_request_id": p.CheckoutRequestID,
		"result_code":         req.ResultCode,
	}).Info("payment reconciled")

	return s.GetByCheckoutRequestID(req.CheckoutRequestID)
}

// Approve marks a paid payment as approved by an admin
func (s *Service) Approve(paymentID uint) (*Payment, error) {
	p, err := s.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPaid {
		return nil, ErrPaymentNotPaid
	}
	if p.IsApproved {
		return p, nil
	}

	if err := s.db.Model(p).Update("is_approved", true).Error; err != nil {
		return nil, fmt.Errorf("failed to approve payment: %w", err)
	}
	p.IsApproved = true
	return p, nil
}

// GetByID returns a payment by ID
func (s *Service) GetByID(paymentID uint) (*Payment, error) {
	var p Payment
	if err := s.db.First(&p, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &p, nil
}

// GetByCheckoutRequestID returns a payment by provider checkout id
func (s *Service) GetByCheckoutRequestID(checkoutRequestID string) (*Payment, error) {
	var p Payment
	err := s.db.Where("checkout_request_id = ?", checkoutRequestID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &p, nil
}

// GetStatusForOrder returns the latest payment for an order,
// enforcing ownership.
func (s *Service) GetStatusForOrder(userID, orderID uint) (*Payment, error) {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, order.ErrNotOrderOwner
	}

	var p Payment
	err = s.db.Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &p, nil
}

// ListAll returns payments for admins, optionally filtered by status
func (s *Service) ListAll(status string, page, limit int) ([]Payment, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Payment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []Payment
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, total, nil
}

// NormalizePhone converts Kenyan phone formats to 254XXXXXXXXX.
// Accepts 07XXXXXXXX, 01XXXXXXXX, +254..., and 254... inputs.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.TrimSpace(phone)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimPrefix(cleaned, "+")

	if strings.HasPrefix(cleaned, "0") && len(cleaned) == 10 {
		cleaned = "254" + cleaned[1:]
	}

	if !phonePattern.MatchString(cleaned) {
		return "", ErrInvalidPhone
	}
	return cleaned, nil
}

// acquireOrderLock takes a short redis advisory lock so concurrent
// initiations for the same order serialize before the DB check. When
// redis is not configured the DB unique index is the only guard.
func (s *Service) acquireOrderLock(ctx context.Context, orderID uint) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("payment:lock:order:%d", orderID)
	ok, err := s.redisClient.SetNX(ctx, key, "1", 30*time.Second).Result()
	if err != nil {
		// Redis being down must not block payments
		return func() {}, nil
	}
	if !ok {
		return nil, ErrPaymentInFlight
	}
	return func() {
		s.redisClient.Del(context.Background(), key)
	}, nil
}
