package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists),
		errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrProductNameRequired),
		errors.Is(err, domain.ErrPriceNegative),
		errors.Is(err, domain.ErrStockNegative),
		errors.Is(err, domain.ErrIdempotencyKeyRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func (h *Handler) abortError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusForError(err), errorResponse{Error: err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
}
