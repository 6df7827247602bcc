package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/address"
)

const (
	addressColumns = `id, user_id, recipient_name, line1, line2, city, postal_code, country, is_default, created_at`

	listAddressesSQL = `SELECT ` + addressColumns + `
		FROM shipping_addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`

	getAddressSQL = `SELECT ` + addressColumns + `
		FROM shipping_addresses WHERE id = $1 AND user_id = $2`

	createAddressSQL = `INSERT INTO shipping_addresses
		(id, user_id, recipient_name, line1, line2, city, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateAddressSQL = `UPDATE shipping_addresses
		SET recipient_name = $3, line1 = $4, line2 = $5, city = $6, postal_code = $7,
		    country = $8, is_default = $9
		WHERE id = $1 AND user_id = $2`

	deleteAddressSQL = `DELETE FROM shipping_addresses WHERE id = $1 AND user_id = $2`

	clearDefaultsSQL = `UPDATE shipping_addresses SET is_default = FALSE WHERE user_id = $1`

	setDefaultSQL = `UPDATE shipping_addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2`

	mostRecentAddressSQL = `SELECT ` + addressColumns + `
		FROM shipping_addresses WHERE user_id = $1 AND id <> $2
		ORDER BY created_at DESC LIMIT 1`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// ListByUser returns a user's addresses, default first, then newest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses of user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// GetByID returns an address scoped to its owner. Another user's address is
// indistinguishable from a missing one.
func (r *AddressRepository) GetByID(ctx context.Context, userID, id string) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressSQL, id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	return &a, nil
}

// Create inserts a new shipping address.
func (r *AddressRepository) Create(ctx context.Context, a *address.Address) error {
	_, err := r.pool.Exec(ctx, createAddressSQL,
		a.ID, a.UserID, a.RecipientName, a.Line1, a.Line2,
		a.City, a.PostalCode, a.Country, a.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("creating address %q: %w", a.ID, err)
	}
	return nil
}

// Update edits an address in place, owner-scoped.
func (r *AddressRepository) Update(ctx context.Context, a *address.Address) error {
	tag, err := r.pool.Exec(ctx, updateAddressSQL,
		a.ID, a.UserID, a.RecipientName, a.Line1, a.Line2,
		a.City, a.PostalCode, a.Country, a.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("updating address %q: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

// Delete removes an address, owner-scoped.
func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteAddressSQL, id, userID)
	if err != nil {
		return fmt.Errorf("deleting address %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

// ClearDefaults unsets the default flag on every address of the user.
func (r *AddressRepository) ClearDefaults(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, clearDefaultsSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing default addresses of user %q: %w", userID, err)
	}
	return nil
}

// SetDefault marks one address as the user's default.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, setDefaultSQL, id, userID)
	if err != nil {
		return fmt.Errorf("setting default address %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

// MostRecent returns the newest address of the user, excluding one id.
func (r *AddressRepository) MostRecent(ctx context.Context, userID, excludeID string) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, mostRecentAddressSQL, userID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("getting most recent address of user %q: %w", userID, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting most recent address of user %q: %w", userID, err)
	}
	return &a, nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.RecipientName, &a.Line1, &a.Line2,
		&a.City, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt,
	)
	return a, err
}
