// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/cart"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/middleware"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	carts *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	userCart, err := h.carts.GetOrCreate(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{
		"cart":     userCart,
		"subtotal": userCart.Subtotal(),
		"count":    userCart.ItemCount(),
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid cart item payload")
		return
	}

	userCart, err := h.carts.AddItem(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, userCart)
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid cart item id")
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid cart item payload")
		return
	}

	userCart, err := h.carts.UpdateItem(userID, uint(id), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, userCart)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid cart item id")
		return
	}

	userCart, err := h.carts.RemoveItem(userID, uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, userCart)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.carts.Clear(userID); err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"cleared": true})
}
