package domain

import "time"

// IdempotencyStatus is the processing state of an idempotency key.
type IdempotencyStatus string

const (
	// IdempotencyStatusProcessing: the request was accepted and is in flight.
	IdempotencyStatusProcessing IdempotencyStatus = "processing"
	// IdempotencyStatusDone: the request finished and its response is stored.
	IdempotencyStatusDone IdempotencyStatus = "done"
	// IdempotencyStatusFailed: the request finished with an error.
	IdempotencyStatusFailed IdempotencyStatus = "failed"
)

// Valid reports whether the status is a supported value.
func (s IdempotencyStatus) Valid() bool {
	switch s {
	case IdempotencyStatusProcessing, IdempotencyStatusDone, IdempotencyStatusFailed:
		return true
	default:
		return false
	}
}

// IdempotencyRecord stores the outcome of a checkout request keyed by its
// idempotency key, so a retried request replays the stored response instead
// of decrementing stock twice.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseBody []byte
	HTTPStatus   int
	Status       IdempotencyStatus
	TTLAt        time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
