package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

const contextUserKey = "storefront_user"

// authenticate resolves the bearer token into a user via the auth
// provider and stores it on the request context.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			h.abortError(c, domain.ErrUnauthenticated)
			return
		}

		user, err := h.auth.UserFromToken(c.Request.Context(), token)
		if err != nil {
			h.abortError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// userFrom returns the authenticated user stored by the middleware.
func userFrom(c *gin.Context) domain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return domain.User{}
	}
	user, _ := value.(domain.User)
	return user
}
