package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

type trackingRepository struct {
	db *sql.DB
}

// NewTrackingRepository creates the PostgreSQL implementation of
// TrackingRepository.
func NewTrackingRepository(store *Store) domain.TrackingRepository {
	return &trackingRepository{db: store.DB()}
}

func (r *trackingRepository) Append(event domain.TrackingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO tracking_events (
			id, order_id, status, description, location, occurred_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		event.ID, event.OrderID, string(event.Status),
		event.Description, event.Location, event.Timestamp,
	); err != nil {
		return fmt.Errorf("insert tracking event: %w", err)
	}

	return nil
}

func (r *trackingRepository) ListByOrder(orderID string) ([]domain.TrackingEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, description, location, occurred_at
		FROM tracking_events
		WHERE order_id = $1
		ORDER BY occurred_at DESC, id DESC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.TrackingEvent, 0)
	for rows.Next() {
		var (
			event  domain.TrackingEvent
			status string
		)
		if err := rows.Scan(
			&event.ID, &event.OrderID, &status,
			&event.Description, &event.Location, &event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan tracking event: %w", err)
		}
		event.Status = domain.OrderStatus(status)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracking events: %w", err)
	}

	return events, nil
}

var _ domain.TrackingRepository = (*trackingRepository)(nil)
