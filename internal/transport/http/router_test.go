package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elfarodelsaber/storefront/internal/domain"
	"github.com/elfarodelsaber/storefront/internal/service/auth"
	"github.com/elfarodelsaber/storefront/internal/service/blob"
	"github.com/elfarodelsaber/storefront/internal/service/cart"
	"github.com/elfarodelsaber/storefront/internal/service/catalog"
	"github.com/elfarodelsaber/storefront/internal/service/order"
	"github.com/elfarodelsaber/storefront/internal/storage/memory"
)

const (
	adminToken    = "admin-token"
	customerToken = "customer-token"
	otherToken    = "other-token"
)

type routerFixture struct {
	router   http.Handler
	products domain.ProductRepository
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	tracking := memory.NewTrackingRepository()
	outbox := memory.NewOutboxRepository()
	idempotency := memory.NewIdempotencyRepository()

	provider := auth.NewStaticProvider(map[string]domain.User{
		adminToken:    {ID: "admin-1", Email: "admin@tienda.test", Name: "Admin", Role: domain.RoleAdmin},
		customerToken: {ID: "customer-1", Email: "cliente@tienda.test", Name: "Cliente", Role: domain.RoleCustomer},
		otherToken:    {ID: "customer-2", Email: "otro@tienda.test", Name: "Otro", Role: domain.RoleCustomer},
	})

	catalogSvc := catalog.NewService(products, blob.NewMemoryStore(), nil)
	cartSvc := cart.NewService(carts, products, nil)
	orderSvc := order.NewService(
		orders, products, carts, tracking,
		order.WithOutbox(outbox),
		order.WithIdempotency(idempotency),
	)

	handler := NewHandler(provider, catalogSvc, cartSvc, orderSvc, nil)
	return &routerFixture{
		router:   handler.Router(),
		products: products,
	}
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (f *routerFixture) createProduct(t *testing.T, name string, priceCents int64, stock int) productResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/products", adminToken, createProductRequest{
		Name:       name,
		PriceCents: priceCents,
		Stock:      stock,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[productResponse](t, rec)
}

func TestSignupAndCurrentUser(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/signup", "", signupRequest{
		Email:    "nueva@tienda.test",
		Password: "secreto123",
		Name:     "Nueva Clienta",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody[userResponse](t, rec)
	require.NotEmpty(t, created.ID)
	require.Equal(t, domain.RoleCustomer, created.Role)

	// The static provider makes the email usable as a token.
	rec = f.do(t, http.MethodGet, "/user", "nueva@tienda.test", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[userResponse](t, rec)
	require.Equal(t, created.ID, me.ID)
}

func TestSignupValidation(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/signup", "", signupRequest{
		Email:    "not-an-email",
		Password: "secreto123",
		Name:     "X",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/cart", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/cart", "unknown-token", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductRoutes(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/products", customerToken, createProductRequest{
		Name: "Taza", PriceCents: 900, Stock: 4,
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	created := f.createProduct(t, "Taza de cerámica", 900, 4)
	require.NotEmpty(t, created.ID)
	require.Equal(t, int64(900), created.PriceCents)

	// Catalog reads need no token.
	rec = f.do(t, http.MethodGet, "/products", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[[]productResponse](t, rec)
	require.Len(t, listed, 1)

	rec = f.do(t, http.MethodGet, "/products/"+created.ID, "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/products/missing", "", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	newPrice := int64(1100)
	rec = f.do(t, http.MethodPut, "/products/"+created.ID, adminToken, updateProductRequest{
		PriceCents: &newPrice,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[productResponse](t, rec)
	require.Equal(t, newPrice, updated.PriceCents)
	require.Equal(t, "Taza de cerámica", updated.Name)

	rec = f.do(t, http.MethodDelete, "/products/"+created.ID, customerToken, nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, "/products/"+created.ID, adminToken, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProductStockAdjustment(t *testing.T) {
	f := newRouterFixture(t)
	product := f.createProduct(t, "Taza esmaltada", 999, 5)

	rec := f.do(t, http.MethodPost, "/products/"+product.ID+"/stock", customerToken, adjustStockRequest{Delta: 3}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/products/"+product.ID+"/stock", adminToken, adjustStockRequest{Delta: 3}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	raised := decodeBody[stockAdjustmentResponse](t, rec)
	require.Equal(t, 8, raised.Product.Stock)
	require.Equal(t, 3, raised.Applied)

	// Stock clamps at zero, so only part of a large decrement lands.
	rec = f.do(t, http.MethodPost, "/products/"+product.ID+"/stock", adminToken, adjustStockRequest{Delta: -20}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	drained := decodeBody[stockAdjustmentResponse](t, rec)
	require.Zero(t, drained.Product.Stock)
	require.Equal(t, -8, drained.Applied)

	rec = f.do(t, http.MethodPost, "/products/missing/stock", adminToken, adjustStockRequest{Delta: 1}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/products/"+product.ID+"/stock", adminToken, map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductValidation(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/products", adminToken, map[string]any{
		"name": "", "price_cents": 100,
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/products", adminToken, map[string]any{
		"name": "Vela", "price_cents": -5,
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartFlow(t *testing.T) {
	f := newRouterFixture(t)
	product := f.createProduct(t, "Cuaderno", 1500, 10)

	rec := f.do(t, http.MethodGet, "/cart", customerToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decodeBody[cartResponse](t, rec)
	require.Empty(t, empty.Items)
	require.Zero(t, empty.TotalCents)

	rec = f.do(t, http.MethodPost, "/cart", customerToken, addCartItemRequest{
		ProductID: product.ID, Qty: 2,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	withItem := decodeBody[cartResponse](t, rec)
	require.Len(t, withItem.Items, 1)
	require.Equal(t, int64(3000), withItem.TotalCents)

	rec = f.do(t, http.MethodPut, "/cart/"+product.ID, customerToken, setCartQuantityRequest{Qty: 5}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bumped := decodeBody[cartResponse](t, rec)
	require.Equal(t, 5, bumped.Items[0].Qty)
	require.Equal(t, int64(7500), bumped.TotalCents)

	rec = f.do(t, http.MethodDelete, "/cart/"+product.ID, customerToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := decodeBody[cartResponse](t, rec)
	require.Empty(t, cleared.Items)
}

func TestCartErrors(t *testing.T) {
	f := newRouterFixture(t)
	product := f.createProduct(t, "Lámpara", 4000, 2)

	rec := f.do(t, http.MethodPost, "/cart", customerToken, addCartItemRequest{
		ProductID: "missing", Qty: 1,
	}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/cart", customerToken, addCartItemRequest{
		ProductID: product.ID, Qty: 3,
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	f := newRouterFixture(t)
	product := f.createProduct(t, "Silla", 25000, 8)

	rec := f.do(t, http.MethodPost, "/cart", customerToken, addCartItemRequest{
		ProductID: product.ID, Qty: 3,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/orders", customerToken, placeOrderRequest{
		PaymentMethod:   "tarjeta",
		ShippingAddress: "Calle Falsa 123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decodeBody[orderResponse](t, rec)
	require.Equal(t, "pendiente", placed.Status)
	require.Equal(t, int64(75000), placed.TotalCents)

	// Checkout emptied the cart and decremented stock.
	rec = f.do(t, http.MethodGet, "/cart", customerToken, nil, nil)
	require.Empty(t, decodeBody[cartResponse](t, rec).Items)
	rec = f.do(t, http.MethodGet, "/products/"+product.ID, "", nil, nil)
	require.Equal(t, 5, decodeBody[productResponse](t, rec).Stock)

	// Ownership: another customer cannot read the order, the admin can.
	rec = f.do(t, http.MethodGet, "/orders/"+placed.ID, otherToken, nil, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(t, http.MethodGet, "/orders/"+placed.ID, adminToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/orders", customerToken, nil, nil)
	require.Len(t, decodeBody[[]orderResponse](t, rec), 1)
	rec = f.do(t, http.MethodGet, "/orders", otherToken, nil, nil)
	require.Empty(t, decodeBody[[]orderResponse](t, rec))

	// Status updates are admin only.
	rec = f.do(t, http.MethodPut, "/orders/"+placed.ID+"/status", customerToken, setOrderStatusRequest{
		Status: "enviado",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/orders/"+placed.ID+"/status", adminToken, setOrderStatusRequest{
		Status:   "enviado",
		Location: "Centro de distribución",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "enviado", decodeBody[orderResponse](t, rec).Status)

	rec = f.do(t, http.MethodPut, "/orders/"+placed.ID+"/status", adminToken, setOrderStatusRequest{
		Status: "perdido",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/orders/"+placed.ID+"/tracking", customerToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tracking := decodeBody[trackingResponse](t, rec)
	require.Len(t, tracking.Events, 2)
	require.Equal(t, "enviado", tracking.Events[0].Status)
	require.Equal(t, "Pedido enviado a la dirección de entrega", tracking.Events[0].Description)

	rec = f.do(t, http.MethodPost, "/orders/"+placed.ID+"/tracking-events", adminToken, trackingEventRequest{
		Description: "Paquete en reparto",
		Location:    "Ruta local",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appended := decodeBody[trackingEventResponse](t, rec)
	require.Equal(t, "enviado", appended.Status)
	require.Equal(t, "Paquete en reparto", appended.Description)

	rec = f.do(t, http.MethodPost, "/orders/"+placed.ID+"/tracking-events", customerToken, trackingEventRequest{
		Description: "no permitido",
	}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/orders", customerToken, placeOrderRequest{
		PaymentMethod:   "efectivo",
		ShippingAddress: "Av. Siempre Viva 742",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderIdempotencyReplay(t *testing.T) {
	f := newRouterFixture(t)
	product := f.createProduct(t, "Mochila", 9000, 6)

	rec := f.do(t, http.MethodPost, "/cart", customerToken, addCartItemRequest{
		ProductID: product.ID, Qty: 2,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	headers := map[string]string{"Idempotency-Key": "checkout-42"}
	body := placeOrderRequest{PaymentMethod: "tarjeta", ShippingAddress: "Calle Falsa 123"}

	rec = f.do(t, http.MethodPost, "/orders", customerToken, body, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[orderResponse](t, rec)

	rec = f.do(t, http.MethodPost, "/orders", customerToken, body, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	replayed := decodeBody[orderResponse](t, rec)
	require.Equal(t, first.ID, replayed.ID)

	// Stock was decremented exactly once.
	rec = f.do(t, http.MethodGet, "/products/"+product.ID, "", nil, nil)
	require.Equal(t, 4, decodeBody[productResponse](t, rec).Stock)

	// The same key with a different request is rejected.
	other := placeOrderRequest{PaymentMethod: "efectivo", ShippingAddress: "Otra dirección"}
	rec = f.do(t, http.MethodPost, "/orders", customerToken, other, headers)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestMalformedJSONBody(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrProductNotFound, http.StatusNotFound},
		{domain.ErrOrderNotFound, http.StatusNotFound},
		{domain.ErrVersionConflict, http.StatusConflict},
		{domain.ErrIdempotencyHashMismatch, http.StatusConflict},
		{domain.ErrUpstream, http.StatusBadGateway},
		{domain.ErrEmptyCart, http.StatusBadRequest},
		{domain.ErrInsufficientStock, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", domain.ErrOutOfStock), http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, statusForError(tc.err), tc.err.Error())
	}
}
