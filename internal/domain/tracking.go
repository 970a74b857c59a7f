package domain

import "time"

// TrackingEvent is one append-only entry in an order's tracking ledger.
// Events are never mutated or deleted; display order is timestamp
// descending.
type TrackingEvent struct {
	ID          string
	OrderID     string
	Status      OrderStatus
	Description string
	Location    string
	Timestamp   time.Time
}
