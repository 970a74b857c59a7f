package memory

import (
	"sort"
	"sync"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// orderRepositoryInMemory is a simple in-memory OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository returns an in-memory repository for local development
// and tests.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create stores a new order if the ID is not taken yet.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrVersionConflict
	}
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// Get returns the order or ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// List returns all orders, newest first.
func (r *orderRepositoryInMemory) List() ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, cloneOrder(order))
	}
	sortOrders(result)
	return result, nil
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepositoryInMemory) ListByUser(userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		result = append(result, cloneOrder(order))
	}
	sortOrders(result)
	return result, nil
}

// Save overwrites the order, checking the version (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrVersionConflict
	}
	order.Version++
	r.items[order.ID] = cloneOrder(order)
	return nil
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

func cloneOrder(src domain.Order) domain.Order {
	dst := src
	dst.Items = make([]domain.OrderItem, len(src.Items))
	copy(dst.Items, src.Items)
	return dst
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
