// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/user"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication and account endpoints
type AuthHandler struct {
	users *user.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}

	resp, err := h.users.Register(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	created(c, resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid login payload")
		return
	}

	resp, err := h.users.Login(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh token required")
		return
	}

	resp, err := h.users.RefreshToken(req.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, resp)
}

// Profile handles GET /profile
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := h.users.GetByID(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, u)
}

// UpdateProfile handles PUT /profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid profile payload")
		return
	}

	u, err := h.users.UpdateProfile(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, u)
}

// ChangePassword handles POST /profile/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid password payload")
		return
	}

	if err := h.users.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"updated": true})
}

// ListUsers handles GET /admin/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.users.ListUsers(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"users": users, "total": total, "page": page, "limit": limit})
}

// SetUserActive handles PUT /admin/users/:id/status
func (h *AuthHandler) SetUserActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid user id")
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "active flag required")
		return
	}

	if err := h.users.SetActive(uint(id), *req.Active); err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"updated": true})
}
