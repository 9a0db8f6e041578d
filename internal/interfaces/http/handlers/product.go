// internal/interfaces/http/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokohub/sokohub-backend/internal/domain/product"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	products *product.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := &product.ListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	}

	products, total, err := h.products.List(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"products": products, "total": total, "page": page, "limit": limit})
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	p, err := h.products.GetByID(uint(id))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, p)
}

// Create handles POST /admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req product.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid product payload")
		return
	}

	p, err := h.products.Create(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	created(c, p)
}

// Update handles PUT /admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	var req product.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid product payload")
		return
	}

	p, err := h.products.Update(uint(id), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, p)
}

// Delete handles DELETE /admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid product id")
		return
	}

	if err := h.products.Delete(uint(id)); err != nil {
		handleServiceError(c, err)
		return
	}
	ok(c, gin.H{"deleted": true})
}
