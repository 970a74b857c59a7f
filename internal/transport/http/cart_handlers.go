package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.carts.Get(userFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	cart, err := h.carts.AddItem(userFrom(c).ID, req.ProductID, req.Qty)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *Handler) setCartQuantity(c *gin.Context) {
	var req setCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	cart, err := h.carts.SetQuantity(userFrom(c).ID, c.Param("productId"), req.Qty)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *Handler) removeCartItem(c *gin.Context) {
	cart, err := h.carts.RemoveItem(userFrom(c).ID, c.Param("productId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}
