package memory

import (
	"sort"
	"sync"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// trackingRepositoryInMemory keeps tracking ledgers in memory (development
// and tests).
type trackingRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.TrackingEvent
}

// NewTrackingRepository creates an in-memory TrackingRepository.
func NewTrackingRepository() domain.TrackingRepository {
	return &trackingRepositoryInMemory{events: make(map[string][]domain.TrackingEvent)}
}

// Append adds one event to the order's ledger. The ledger is append-only.
func (r *trackingRepositoryInMemory) Append(event domain.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.OrderID] = append(r.events[event.OrderID], event)
	return nil
}

// ListByOrder returns the order's events sorted by timestamp descending.
// Insertion order is deliberately not trusted.
func (r *trackingRepositoryInMemory) ListByOrder(orderID string) ([]domain.TrackingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[orderID]
	result := make([]domain.TrackingEvent, len(events))
	copy(result, events)

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

var _ domain.TrackingRepository = (*trackingRepositoryInMemory)(nil)
