package http

import (
	"time"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// Request bodies.

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role"`
}

type createProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" binding:"min=0"`
	Stock       int    `json:"stock" binding:"min=0"`
	Image       string `json:"image"`
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int    `json:"stock"`
	Image       *string `json:"image"`
}

type adjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int    `json:"qty" binding:"required"`
}

type setCartQuantityRequest struct {
	// Qty of zero or less removes the line.
	Qty int `json:"qty"`
}

type placeOrderRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
}

type setOrderStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type trackingEventRequest struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Response bodies.

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type stockAdjustmentResponse struct {
	Product productResponse `json:"product"`
	Applied int             `json:"applied"`
}

type cartLineResponse struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Product   productResponse `json:"product"`
	AddedAt   time.Time       `json:"added_at"`
}

type cartResponse struct {
	UserID     string             `json:"user_id"`
	Items      []cartLineResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type orderItemResponse struct {
	ProductID   string          `json:"product_id"`
	Qty         int             `json:"qty"`
	DeductedQty int             `json:"deducted_qty"`
	Product     productResponse `json:"product"`
	AddedAt     time.Time       `json:"added_at"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	UserEmail       string              `json:"user_email"`
	Items           []orderItemResponse `json:"items"`
	TotalCents      int64               `json:"total_cents"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress string              `json:"shipping_address"`
	Status          string              `json:"status"`
	Version         int64               `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type trackingEventResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type trackingResponse struct {
	Order  orderResponse           `json:"order"`
	Events []trackingEventResponse `json:"events"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toCartResponse(cart domain.Cart) cartResponse {
	items := make([]cartLineResponse, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, cartLineResponse{
			ProductID: line.ProductID,
			Qty:       line.Qty,
			Product:   toProductResponse(line.Product),
			AddedAt:   line.AddedAt,
		})
	}
	return cartResponse{
		UserID:     cart.UserID,
		Items:      items,
		TotalCents: cart.TotalCents(),
		UpdatedAt:  cart.UpdatedAt,
	}
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID:   item.ProductID,
			Qty:         item.Qty,
			DeductedQty: item.DeductedQty,
			Product:     toProductResponse(item.Product),
			AddedAt:     item.AddedAt,
		})
	}
	return orderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		UserEmail:       order.UserEmail,
		Items:           items,
		TotalCents:      order.TotalCents,
		PaymentMethod:   order.PaymentMethod,
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		Version:         order.Version,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return out
}

func toTrackingEventResponse(event domain.TrackingEvent) trackingEventResponse {
	return trackingEventResponse{
		ID:          event.ID,
		OrderID:     event.OrderID,
		Status:      string(event.Status),
		Description: event.Description,
		Location:    event.Location,
		Timestamp:   event.Timestamp,
	}
}

func toTrackingEventResponses(events []domain.TrackingEvent) []trackingEventResponse {
	out := make([]trackingEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toTrackingEventResponse(event))
	}
	return out
}
