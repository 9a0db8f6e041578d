// internal/interfaces/http/handlers/payment_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sokohub/sokohub-backend/internal/config"
	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/payment"
)

func setupCallbackRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&order.Order{}, &order.OrderItem{}, &payment.Payment{}))

	cfg := &config.Config{
		External: config.ExternalConfig{
			Payhero: config.PayheroConfig{Provider: "m-pesa"},
		},
	}
	paymentService := payment.NewService(db, nil, cfg, order.NewService(db), nil)
	handler := NewPaymentHandler(paymentService)

	router := gin.New()
	router.POST("/api/v1/payments/callback", handler.Callback)
	return router, db
}

func postCallback(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCallback_UnknownCheckoutIDIsAcknowledged(t *testing.T) {
	router, _ := setupCallbackRouter(t)

	rec := postCallback(t, router, payment.CallbackRequest{
		CheckoutRequestID: "ws_CO_never_issued",
		ResultCode:        0,
	})

	// Provider retries must see success, not an error
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ignored", resp.Data.Status)
}

func TestCallback_KnownCheckoutIDSettlesPayment(t *testing.T) {
	router, db := setupCallbackRouter(t)

	o := &order.Order{
		OrderNumber:   "ORD-TEST-CB",
		UserID:        1,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentStatusPending,
		TotalAmount:   800,
	}
	require.NoError(t, db.Create(o).Error)

	p := &payment.Payment{
		OrderID:           o.ID,
		UserID:            1,
		Amount:            800,
		Phone:             "254712345678",
		Provider:          "m-pesa",
		Status:            payment.StatusQueued,
		ExternalRef:       "PAY-1-1-1",
		CheckoutRequestID: "ws_CO_known",
	}
	require.NoError(t, db.Create(p).Error)

	rec := postCallback(t, router, payment.CallbackRequest{
		CheckoutRequestID: "ws_CO_known",
		ResultCode:        0,
		MpesaReceipt:      "RCPT99",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var settled payment.Payment
	require.NoError(t, db.First(&settled, p.ID).Error)
	assert.Equal(t, payment.StatusPaid, settled.Status)

	var reloaded order.Order
	require.NoError(t, db.First(&reloaded, o.ID).Error)
	assert.Equal(t, order.PaymentStatusPaid, reloaded.PaymentStatus)
}

func TestCallback_MissingCheckoutIDIsRejected(t *testing.T) {
	router, _ := setupCallbackRouter(t)

	rec := postCallback(t, router, map[string]interface{}{"result_code": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
