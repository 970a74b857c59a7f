package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// signup registers a new customer with the identity platform. The role is
// always cliente; administrators are provisioned out of band.
func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password, req.Name, domain.RoleCustomer)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *Handler) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(userFrom(c)))
}
