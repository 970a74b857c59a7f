package http

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/domain"
	"github.com/elfarodelsaber/storefront/internal/service/cart"
	"github.com/elfarodelsaber/storefront/internal/service/catalog"
	"github.com/elfarodelsaber/storefront/internal/service/order"
)

// Handler bundles the storefront services behind the REST surface.
type Handler struct {
	auth    domain.AuthProvider
	catalog *catalog.Service
	carts   *cart.Service
	orders  *order.Service
	logger  *log.Entry
}

// NewHandler creates the HTTP handler layer.
func NewHandler(
	auth domain.AuthProvider,
	catalogSvc *catalog.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	return &Handler{
		auth:    auth,
		catalog: catalogSvc,
		carts:   cartSvc,
		orders:  orderSvc,
		logger:  logger,
	}
}

// Router builds the gin engine with all storefront routes.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	router.POST("/signup", h.signup)

	// The catalog is browsable without a token.
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	authed := router.Group("", h.authenticate())
	{
		authed.GET("/user", h.currentUser)

		authed.POST("/products", h.createProduct)
		authed.PUT("/products/:id", h.updateProduct)
		authed.DELETE("/products/:id", h.deleteProduct)
		authed.POST("/products/:id/stock", h.adjustProductStock)

		authed.GET("/cart", h.getCart)
		authed.POST("/cart", h.addCartItem)
		authed.PUT("/cart/:productId", h.setCartQuantity)
		authed.DELETE("/cart/:productId", h.removeCartItem)

		authed.POST("/orders", h.placeOrder)
		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.PUT("/orders/:id/status", h.setOrderStatus)
		authed.GET("/orders/:id/tracking", h.getTracking)
		authed.POST("/orders/:id/tracking-events", h.appendTrackingEvent)
	}

	return router
}
