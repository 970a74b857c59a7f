package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.orders.PlaceOrder(
		c.Request.Context(),
		userFrom(c),
		req.PaymentMethod,
		req.ShippingAddress,
		c.GetHeader("Idempotency-Key"),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, toOrderResponse(result.Order))
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.List(userFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.Get(userFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) setOrderStatus(c *gin.Context) {
	var req setOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	order, err := h.orders.SetStatus(
		c.Request.Context(),
		userFrom(c),
		c.Param("id"),
		domain.OrderStatus(req.Status),
		req.Description,
		req.Location,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handler) getTracking(c *gin.Context) {
	order, events, err := h.orders.GetTracking(userFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, trackingResponse{
		Order:  toOrderResponse(order),
		Events: toTrackingEventResponses(events),
	})
}

func (h *Handler) appendTrackingEvent(c *gin.Context) {
	var req trackingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	event, err := h.orders.AppendTrackingEvent(
		userFrom(c),
		c.Param("id"),
		domain.OrderStatus(req.Status),
		req.Description,
		req.Location,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTrackingEventResponse(event))
}
