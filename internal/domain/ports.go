package domain

import (
	"context"
	"time"
)

// AuthProvider resolves identities against the external auth platform.
type AuthProvider interface {
	// UserFromToken returns the user for a bearer token or
	// ErrUnauthenticated when the token is absent or invalid.
	UserFromToken(ctx context.Context, token string) (User, error)
	// Signup registers a new user with the identity platform.
	Signup(ctx context.Context, email, password, name, role string) (User, error)
}

// BlobStore is the boundary to the external object storage. The catalog only
// ever persists the signed URL, never bytes.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MailTemplate identifies one of the transactional email templates.
type MailTemplate string

const (
	MailTemplateRegistration MailTemplate = "registration"
	MailTemplateOrderCreated MailTemplate = "order_created"
	MailTemplateOrderUpdated MailTemplate = "order_updated"
)

// Mailer sends transactional email. Calls are fire-and-forget from the
// core's perspective: failures are logged, never surfaced to the caller.
type Mailer interface {
	Send(ctx context.Context, to string, template MailTemplate, data map[string]any) error
}

// OutboxPublisher publishes events from the transactional outbox. Must be
// idempotent: the worker may retry a message it already delivered.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}

// OutboxRepository queues events for later publication.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository stores checkout request state per idempotency key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage holds one event awaiting publication.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats describes the current transactional-outbox backlog.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
