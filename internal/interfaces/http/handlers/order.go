// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/order"
	"github.com/sokohub/sokohub-backend/internal/domain/payment"
	"github.com/sokohub/sokohub-backend/internal/domain/user"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/middleware"
	"github.com/sokohub/sokohub-backend/internal/pkg/pdf"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders   *order.Service
	payments *payment.Service
	users    *user.Service
	receipts *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, payments *payment.Service, users *user.Service, receipts *pdf.Service) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		payments: payments,
		users:    users,
		receipts: receipts,
	}
}

// Create handles POST /orders, converting the user's cart into an order
func (h *OrderHandler) Create(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req order.CreateFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order payload")
		return
	}

	o, err := h.orders.CreateFromCart(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	created(c, o)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	var o *order.Order
	if middleware.IsAdminFromContext(c) {
		o, err = h.orders.GetByID(uint(id))
	} else {
		o, err = h.orders.Get(userID, uint(id))
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, o)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, total, err := h.orders.ListForUser(userID, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"orders": orders, "total": total, "page": page, "limit": limit})
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	o, err := h.orders.Cancel(userID, uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, o)
}

// Receipt handles GET /orders/:id/receipt, returning a PDF
func (h *OrderHandler) Receipt(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	o, err := h.orders.Get(userID, uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !o.IsPaid() {
		badRequest(c, "receipt is only available for paid orders")
		return
	}

	u, err := h.users.GetByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	p, err := h.payments.GetStatusForOrder(userID, o.ID)
	if err != nil {
		p = nil
	}

	data, err := h.receipts.GenerateReceipt(o, u, p)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=receipt-"+o.OrderNumber+".pdf")
	c.Data(http.StatusOK, "application/pdf", data)
}

// ListAll handles GET /admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	orders, total, err := h.orders.ListAll(status, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"orders": orders, "total": total, "page": page, "limit": limit})
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status required")
		return
	}

	o, err := h.orders.UpdateStatus(uint(id), req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, o)
}
