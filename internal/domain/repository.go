package domain

// ProductRepository describes the catalog storage requirements.
type ProductRepository interface {
	// Create stores a new product. Fails if the ID is already taken.
	Create(product Product) error
	// Get returns the product or ErrProductNotFound.
	Get(id string) (Product, error)
	// List returns the whole catalog ordered by creation time descending.
	List() ([]Product, error)
	// Save applies updates with optimistic locking: the write succeeds only
	// if the stored version matches product.Version, otherwise
	// ErrVersionConflict. Every stock mutation goes through Save.
	Save(product Product) error
	// Delete removes the product. Deleting an absent product is a no-op.
	Delete(id string) error
}

// CartRepository stores one cart per user.
type CartRepository interface {
	// Get returns the user's cart, or an empty cart if none exists yet.
	Get(userID string) (Cart, error)
	// Put overwrites the user's cart.
	Put(cart Cart) error
}

// OrderRepository describes the order storage requirements.
type OrderRepository interface {
	// Create stores a new order. Fails if the ID is already taken.
	Create(order Order) error
	// Get returns the order or ErrOrderNotFound.
	Get(id string) (Order, error)
	// List returns all orders, newest first.
	List() ([]Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(userID string) ([]Order, error)
	// Save applies status updates with optimistic locking.
	Save(order Order) error
}

// TrackingRepository stores the append-only tracking ledger.
type TrackingRepository interface {
	// Append adds one event to an order's ledger.
	Append(event TrackingEvent) error
	// ListByOrder returns the order's events sorted by timestamp
	// descending. The backing store offers no ordering guarantee, so
	// implementations must sort on read.
	ListByOrder(orderID string) ([]TrackingEvent, error)
}
