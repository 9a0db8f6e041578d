// internal/interfaces/http/handlers/feedback.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/feedback"
	"github.com/sokohub/sokohub-backend/internal/interfaces/http/middleware"
)

// FeedbackHandler handles customer feedback endpoints
type FeedbackHandler struct {
	feedback *feedback.Service
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(fb *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{feedback: fb}
}

// Create handles POST /feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req feedback.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid feedback payload")
		return
	}

	fb, err := h.feedback.Create(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	created(c, fb)
}

// List handles GET /feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := h.feedback.ListForUser(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, items)
}

// Delete handles DELETE /feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid feedback id")
		return
	}

	if err := h.feedback.Delete(userID, uint(id)); err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}

// ListAll handles GET /admin/feedback
func (h *FeedbackHandler) ListAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := h.feedback.ListAll(page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	avg, err := h.feedback.AverageRating()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	ok(c, gin.H{
		"feedback":       items,
		"total":          total,
		"page":           page,
		"limit":          limit,
		"average_rating": avg,
	})
}

// Approve handles PUT /admin/feedback/:id/approve
func (h *FeedbackHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid feedback id")
		return
	}

	fb, err := h.feedback.Approve(uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, fb)
}

// AdminDelete handles DELETE /admin/feedback/:id
func (h *FeedbackHandler) AdminDelete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid feedback id")
		return
	}

	if err := h.feedback.AdminDelete(uint(id)); err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}

// Respond handles POST /admin/feedback/:id/respond
func (h *FeedbackHandler) Respond(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid feedback id")
		return
	}

	var req struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "response required")
		return
	}

	fb, err := h.feedback.Respond(uint(id), req.Response)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, fb)
}
