// internal/interfaces/http/handlers/address.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/user"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/middleware"
)

// AddressHandler handles delivery address endpoints
type AddressHandler struct {
	addresses *user.AddressService
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(addresses *user.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// Create handles POST /addresses
func (h *AddressHandler) Create(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req user.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid address payload")
		return
	}

	addr, err := h.addresses.Create(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	created(c, addr)
}

// List handles GET /addresses
func (h *AddressHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	addresses, err := h.addresses.List(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, addresses)
}

// Update handles PUT /addresses/:id
func (h *AddressHandler) Update(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid address id")
		return
	}

	var req user.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid address payload")
		return
	}

	addr, err := h.addresses.Update(userID, uint(id), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, addr)
}

// Delete handles DELETE /addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid address id")
		return
	}

	if err := h.addresses.Delete(userID, uint(id)); err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}
