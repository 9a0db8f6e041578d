// internal/interfaces/http/handlers/report.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/report"
)

// ReportHandler handles admin reporting endpoints
type ReportHandler struct {
	reports *report.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary handles GET /admin/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, summary)
}

// TopProducts handles GET /admin/reports/top-products
func (h *ReportHandler) TopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := h.reports.TopProducts(limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, rows)
}

// SalesByDay handles GET /admin/reports/sales
func (h *ReportHandler) SalesByDay(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	rows, err := h.reports.SalesByDay(days)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, rows)
}
