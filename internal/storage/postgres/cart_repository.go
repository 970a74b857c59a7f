package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates the PostgreSQL implementation of CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) Get(userID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		cart     domain.Cart
		rawItems []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, items, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.UserID, &rawItems, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// First access creates an empty cart view without a row.
			return domain.Cart{UserID: userID, Items: []domain.CartLine{}}, nil
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	var docs []cartLineDoc
	if err := json.Unmarshal(rawItems, &docs); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart items: %w", err)
	}
	cart.Items = fromCartLineDocs(docs)

	return cart, nil
}

func (r *cartRepository) Put(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rawItems, err := json.Marshal(toCartLineDocs(cart.Items))
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET items = EXCLUDED.items,
		    updated_at = EXCLUDED.updated_at
	`, cart.UserID, rawItems, cart.UpdatedAt); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
