package memory

import (
	"sync"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// cartRepositoryInMemory stores one cart per user in memory.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewCartRepository creates an in-memory CartRepository.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{carts: make(map[string]domain.Cart)}
}

// Get returns the user's cart, or an empty cart when none exists yet.
// First access never fails.
func (r *cartRepositoryInMemory) Get(userID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.Cart{UserID: userID, Items: []domain.CartLine{}}, nil
	}

	// Copy the lines so callers cannot mutate the stored cart.
	copied := cart
	copied.Items = make([]domain.CartLine, len(cart.Items))
	copy(copied.Items, cart.Items)
	return copied, nil
}

// Put overwrites the user's cart.
func (r *cartRepositoryInMemory) Put(cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cart
	stored.Items = make([]domain.CartLine, len(cart.Items))
	copy(stored.Items, cart.Items)
	r.carts[cart.UserID] = stored
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
