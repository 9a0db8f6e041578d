// internal/domain/payment/service_test.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sokohub/sokohub-backend/internal/config"
	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/product"
)

type fakePusher struct {
	calls     int
	err       error
	response  *STKPushResponse
	lastPhone string
	lastRef   string
}

func (f *fakePusher) InitiateSTKPush(amount int64, phone, externalRef string) (*STKPushResponse, error) {
	f.calls++
	f.lastPhone = phone
	f.lastRef = externalRef
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&product.Product{},
		&order.Order{},
		&order.OrderItem{},
		&Payment{},
	)
	require.NoError(t, err)

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		External: config.ExternalConfig{
			Payhero: config.PayheroConfig{
				Username:  "test-user",
				Password:  "test-pass",
				ChannelID: "1234",
				Provider:  "m-pesa",
			},
		},
	}
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, amount int64) *order.Order {
	t.Helper()

	o := &order.Order{
		OrderNumber:   fmt.Sprintf("ORD-TEST-%d-%d", userID, amount),
		UserID:        userID,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentStatusPending,
		TotalAmount:   amount,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func newTestService(db *gorm.DB, pusher STKPusher) *Service {
	return NewService(db, nil, testConfig(), order.NewService(db), pusher)
}

func TestInitiate_Success(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{Success: true, CheckoutRequestID: "ws_CO_123"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 7, 2200)

	p, err := service.Initiate(context.Background(), 7, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	require.NoError(t, err)

	assert.Equal(t, StatusQueued, p.Status)
	assert.Equal(t, "ws_CO_123", p.CheckoutRequestID)
	assert.Equal(t, int64(2200), p.Amount)
	assert.Equal(t, "254712345678", p.Phone)
	assert.False(t, p.IsApproved)
	assert.Equal(t, 1, pusher.calls)

	refPattern := regexp.MustCompile(fmt.Sprintf(`^PAY-7-\d+-%d$`, o.ID))
	assert.Regexp(t, refPattern, p.ExternalRef)
	assert.Equal(t, p.ExternalRef, pusher.lastRef)
	assert.Equal(t, "254712345678", pusher.lastPhone)
}

func TestInitiate_OrderNotFound(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "x"}}
	service := newTestService(db, pusher)

	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: 999, Phone: "0712345678", Amount: 100})
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Zero(t, pusher.calls)
}

func TestInitiate_NotOrderOwner(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "x"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 500)

	_, err := service.Initiate(context.Background(), 2, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	assert.ErrorIs(t, err, order.ErrNotOrderOwner)
	assert.Zero(t, pusher.calls)
}

func TestInitiate_AlreadyPaid(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "x"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 500)
	require.NoError(t, db.Model(o).Update("payment_status", order.PaymentStatusPaid).Error)

	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
	assert.Zero(t, pusher.calls)
}

func TestInitiate_InvalidPhone(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "x"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 500)

	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "12345", Amount: o.TotalAmount})
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Zero(t, pusher.calls)
}

func TestInitiate_AmountMustMatchOrderTotal(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "x"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 2200)

	t.Run("mismatched amount", func(t *testing.T) {
		_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: 2000})
		assert.ErrorIs(t, err, ErrAmountMismatch)
		assert.Zero(t, pusher.calls)
	})

	t.Run("non positive amount", func(t *testing.T) {
		_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: -1})
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Zero(t, pusher.calls)
	})

	var count int64
	db.Model(&Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestInitiate_InFlightGuardBlocksSecondAttempt(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "ws_CO_first"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 500)

	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	require.NoError(t, err)
	require.Equal(t, 1, pusher.calls)

	// Second attempt is rejected before the provider is contacted
	_, err = service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	assert.ErrorIs(t, err, ErrPaymentInFlight)
	assert.Equal(t, 1, pusher.calls)
}

func TestInitiate_ProviderFailureLeavesNoRow(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{err: fmt.Errorf("%w: no checkout request id", ErrProviderRejected)}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 500)

	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	assert.ErrorIs(t, err, ErrProviderRejected)

	var count int64
	db.Model(&Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestInitiate_ReferencesAreUniqueAcrossOrders(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{}
	service := newTestService(db, pusher)

	first := seedOrder(t, db, 1, 500)
	second := seedOrder(t, db, 1, 1200)

	pusher.response = &STKPushResponse{CheckoutRequestID: "ws_CO_u1"}
	p1, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: first.ID, Phone: "0712345678", Amount: 500})
	require.NoError(t, err)

	pusher.response = &STKPushResponse{CheckoutRequestID: "ws_CO_u2"}
	p2, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: second.ID, Phone: "0712345678", Amount: 1200})
	require.NoError(t, err)

	assert.NotEqual(t, p1.ExternalRef, p2.ExternalRef)
}

func TestReconcile_SuccessMarksOrderPaid(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "ws_CO_abc"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 1500)
	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	require.NoError(t, err)

	p, err := service.Reconcile(&CallbackRequest{
		CheckoutRequestID: "ws_CO_abc",
		ResultCode:        0,
		ResultDescription: "The service request is processed successfully.",
		MpesaReceipt:      "SGH7YTR2KL",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, p.Status)
	assert.Equal(t, "SGH7YTR2KL", p.MpesaReceipt)
	assert.NotNil(t, p.CompletedAt)

	var reloaded order.Order
	require.NoError(t, db.First(&reloaded, o.ID).Error)
	assert.Equal(t, order.PaymentStatusPaid, reloaded.PaymentStatus)
	assert.Equal(t, order.StatusProcessing, reloaded.Status)
}

func TestReconcile_FailureMarksPaymentFailed(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "ws_CO_fail"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 1500)
	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	require.NoError(t, err)

	p, err := service.Reconcile(&CallbackRequest{
		CheckoutRequestID: "ws_CO_fail",
		ResultCode:        1032,
		ResultDescription: "Request cancelled by user",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, p.Status)

	var reloaded order.Order
	require.NoError(t, db.First(&reloaded, o.ID).Error)
	assert.Equal(t, order.PaymentStatusFailed, reloaded.PaymentStatus)
}

func TestReconcile_IsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "ws_CO_idem"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 800)
	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	require.NoError(t, err)

	callback := &CallbackRequest{
		CheckoutRequestID: "ws_CO_idem",
		ResultCode:        0,
		MpesaReceipt:      "RCPT1",
	}

	first, err := service.Reconcile(callback)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, first.Status)

	// Replaying the callback, even with a conflicting result, is a no-op
	replay, err := service.Reconcile(&CallbackRequest{
		CheckoutRequestID: "ws_CO_idem",
		ResultCode:        1032,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, replay.Status)
	assert.Equal(t, "RCPT1", replay.MpesaReceipt)
}

func TestReconcile_UnknownCheckoutID(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db, &fakePusher{})

	_, err := service.Reconcile(&CallbackRequest{CheckoutRequestID: "ws_CO_ghost"})
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestApprove(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "ws_CO_appr"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 800)
	queued, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	require.NoError(t, err)

	t.Run("queued payment cannot be approved", func(t *testing.T) {
		_, err := service.Approve(queued.ID)
		assert.ErrorIs(t, err, ErrPaymentNotPaid)
	})

	_, err = service.Reconcile(&CallbackRequest{CheckoutRequestID: "ws_CO_appr", ResultCode: 0})
	require.NoError(t, err)

	t.Run("paid payment can be approved", func(t *testing.T) {
		p, err := service.Approve(queued.ID)
		require.NoError(t, err)
		assert.True(t, p.IsApproved)
	})

	t.Run("approval is idempotent", func(t *testing.T) {
		p, err := service.Approve(queued.ID)
		require.NoError(t, err)
		assert.True(t, p.IsApproved)
	})
}

func TestGetStatusForOrder_OwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	pusher := &fakePusher{response: &STKPushResponse{CheckoutRequestID: "ws_CO_own"}}
	service := newTestService(db, pusher)

	o := seedOrder(t, db, 1, 800)
	_, err := service.Initiate(context.Background(), 1, &InitiateRequest{OrderID: o.ID, Phone: "0712345678", Amount: o.TotalAmount})
	require.NoError(t, err)

	_, err = service.GetStatusForOrder(2, o.ID)
	assert.ErrorIs(t, err, order.ErrNotOrderOwner)

	p, err := service.GetStatusForOrder(1, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, p.Status)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"local safaricom format", "0712345678", "254712345678", nil},
		{"local landline prefix", "0110345678", "254110345678", nil},
		{"already normalized", "254712345678", "254712345678", nil},
		{"plus prefix", "+254712345678", "254712345678", nil},
		{"spaces stripped", "0712 345 678", "254712345678", nil},
		{"too short", "07123", "", ErrInvalidPhone},
		{"not kenyan", "15551234567", "", ErrInvalidPhone},
		{"empty", "", "", ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
