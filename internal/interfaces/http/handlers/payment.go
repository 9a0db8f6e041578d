// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/payment"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments *payment.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Initiate handles POST /payments, starting an M-Pesa STK push
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req payment.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payment payload")
		return
	}

	p, err := h.payments.Initiate(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	created(c, p)
}

// Status handles GET /payments/order/:orderId
func (h *PaymentHandler) Status(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	p, err := h.payments.GetStatusForOrder(userID, uint(orderID))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, p)
}

// Callback handles POST /payments/callback from the provider.
// Recognized payments and unknown checkout ids both get a 200 so the
// provider stops retrying; replays are no-ops.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req payment.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid callback payload")
		return
	}

	p, err := h.payments.Reconcile(&req)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			ok(c, gin.H{"status": "ignored"})
			return
		}
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"status": p.Status})
}

// ListAll handles GET /admin/payments
func (h *PaymentHandler) ListAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	payments, total, err := h.payments.ListAll(status, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"payments": payments, "total": total, "page": page, "limit": limit})
}

// Approve handles POST /admin/payments/:id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid payment id")
		return
	}

	p, err := h.payments.Approve(uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, p)
}
