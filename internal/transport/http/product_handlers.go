package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elfarodelsaber/storefront/internal/domain"
	"github.com/elfarodelsaber/storefront/internal/service/catalog"
)

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.List()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *Handler) createProduct(c *gin.Context) {
	if !userFrom(c).IsAdmin() {
		h.respondError(c, domain.ErrForbidden)
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), catalog.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *Handler) updateProduct(c *gin.Context) {
	if !userFrom(c).IsAdmin() {
		h.respondError(c, domain.ErrForbidden)
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	product, err := h.catalog.Update(c.Request.Context(), c.Param("id"), catalog.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Image:       req.Image,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// adjustProductStock applies a relative stock change. Stock never goes
// negative, so the response carries the delta that actually landed.
func (h *Handler) adjustProductStock(c *gin.Context) {
	if !userFrom(c).IsAdmin() {
		h.respondError(c, domain.ErrForbidden)
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	product, applied, err := h.catalog.AdjustStock(c.Param("id"), req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stockAdjustmentResponse{
		Product: toProductResponse(product),
		Applied: applied,
	})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if !userFrom(c).IsAdmin() {
		h.respondError(c, domain.ErrForbidden)
		return
	}

	if err := h.catalog.Delete(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
