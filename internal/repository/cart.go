package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/cart"
)

const (
	getCartSQL = `SELECT items FROM carts WHERE token = $1`

	saveCartSQL = `INSERT INTO carts (token, items, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (token) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`

	clearCartSQL = `DELETE FROM carts WHERE token = $1`
)

var _ cart.Store = (*CartStore)(nil)

// CartStore persists visitor carts as JSONB line lists keyed by token.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore returns a CartStore that uses the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// Load returns the cart for a token, or cart.ErrNotFound.
func (s *CartStore) Load(ctx context.Context, token string) (cart.Cart, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, getCartSQL, token).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.Cart{}, cart.ErrNotFound
		}
		return cart.Cart{}, fmt.Errorf("loading cart %q: %w", token, err)
	}

	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return cart.Cart{}, fmt.Errorf("decoding cart %q: %w", token, err)
	}
	return cart.Cart{Token: token, Lines: lines}, nil
}

// Save upserts the cart under its token.
func (s *CartStore) Save(ctx context.Context, c cart.Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding cart %q: %w", c.Token, err)
	}

	if _, err := s.pool.Exec(ctx, saveCartSQL, c.Token, raw); err != nil {
		return fmt.Errorf("saving cart %q: %w", c.Token, err)
	}
	return nil
}

// Clear removes the cart row. Clearing an absent cart is a no-op.
func (s *CartStore) Clear(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, clearCartSQL, token); err != nil {
		return fmt.Errorf("clearing cart %q: %w", token, err)
	}
	return nil
}
