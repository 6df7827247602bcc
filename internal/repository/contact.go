package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/contact"
)

const (
	contactColumns = `id, name, email, subject, body, read, created_at`

	getContactMessageSQL = `SELECT ` + contactColumns + ` FROM contact_messages WHERE id = $1`

	createContactMessageSQL = `INSERT INTO contact_messages (id, name, email, subject, body)
		VALUES ($1, $2, $3, $4, $5)`

	markContactReadSQL = `UPDATE contact_messages SET read = TRUE WHERE id = $1`

	deleteContactMessageSQL = `DELETE FROM contact_messages WHERE id = $1`

	countUnreadContactSQL = `SELECT count(*) FROM contact_messages WHERE NOT read`
)

var _ contact.Repository = (*ContactRepository)(nil)

// ContactRepository implements contact.Repository backed by PostgreSQL.
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a ContactRepository that uses the given pool.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// List returns messages newest first, optionally unread only.
func (r *ContactRepository) List(ctx context.Context, unreadOnly bool, offset, limit int) ([]contact.Message, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages`
	args := []any{}
	if unreadOnly {
		query += ` WHERE NOT read`
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	return pgx.CollectRows(rows, scanContactMessage)
}

// GetByID returns a single message.
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*contact.Message, error) {
	rows, err := r.pool.Query(ctx, getContactMessageSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting contact message %q: %w", id, err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanContactMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contact.ErrNotFound
		}
		return nil, fmt.Errorf("getting contact message %q: %w", id, err)
	}
	return &m, nil
}

// Create inserts a new message.
func (r *ContactRepository) Create(ctx context.Context, m *contact.Message) error {
	_, err := r.pool.Exec(ctx, createContactMessageSQL, m.ID, m.Name, m.Email, m.Subject, m.Body)
	if err != nil {
		return fmt.Errorf("creating contact message %q: %w", m.ID, err)
	}
	return nil
}

// MarkRead flags a message as read.
func (r *ContactRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, markContactReadSQL, id)
	if err != nil {
		return fmt.Errorf("marking contact message %q read: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// Delete removes a message permanently.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteContactMessageSQL, id)
	if err != nil {
		return fmt.Errorf("deleting contact message %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// CountUnread returns the number of unread messages.
func (r *ContactRepository) CountUnread(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countUnreadContactSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting unread contact messages: %w", err)
	}
	return n, nil
}

func scanContactMessage(row pgx.CollectableRow) (contact.Message, error) {
	var m contact.Message
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.Read, &m.CreatedAt)
	return m, err
}
