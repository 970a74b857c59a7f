package domain

import "errors"

var (
	// ErrProductNameRequired: product is missing a name.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrPriceNegative: price must be non-negative.
	ErrPriceNegative = errors.New("price_cents must be non-negative")
	// ErrStockNegative: stock must be non-negative.
	ErrStockNegative = errors.New("stock must be non-negative")
	// ErrUserRequired: order is missing the owning user.
	ErrUserRequired = errors.New("user_id is required")
	// ErrItemsRequired: order must contain at least one item.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// ErrTotalNegative: order total must be non-negative.
	ErrTotalNegative = errors.New("total_cents must be non-negative")
	// ErrTotalMismatch: order total does not match its lines.
	ErrTotalMismatch = errors.New("order total does not match items sum")
	// ErrItemQtyInvalid: item quantity must be greater than zero.
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// ErrItemPriceInvalid: item price must be non-negative.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrInvalidStatus: status is not a known lifecycle state.
	ErrInvalidStatus = errors.New("unknown order status")

	// ErrProductNotFound is returned when a product is absent from the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound is returned when an order is absent.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCartLineNotFound is returned when a cart line is absent.
	ErrCartLineNotFound = errors.New("cart item not found")
	// ErrEmptyCart rejects checkout of a cart with zero lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOutOfStock rejects adding a product whose stock is zero.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrInsufficientStock rejects a quantity exceeding the available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnauthenticated: no or invalid bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden: authenticated but lacking role or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrVersionConflict signals a lost optimistic-concurrency race; the
	// operation may be retried against a fresh read.
	ErrVersionConflict = errors.New("version conflict")

	// ErrUpstream: an external collaborator (auth, blob, mail) failed.
	ErrUpstream = errors.New("upstream provider error")

	// ErrOutboxPublish: publishing an outbox message failed.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// ErrIdempotencyKeyRequired: idempotency key must not be empty.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired: request hash must not be empty.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists: the key was already registered.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyHashMismatch: the key was reused with a different request.
	ErrIdempotencyHashMismatch = errors.New("idempotency key reused with different request")
	// ErrIdempotencyKeyNotFound: no record for the key.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// IsVersionConflict reports whether err is an optimistic-concurrency conflict.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsNotFound reports whether err signals an absent entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCartLineNotFound)
}
