package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/lifecycle"
	"github.com/corvel/storefront/internal/domain/user"
)

const (
	userColumns = `id, username, email, password_hash, full_name, lifecycle, created_at`

	getUserByIDSQL = `SELECT ` + userColumns + `
		FROM users WHERE id = $1 AND lifecycle <> 'deleted'`

	getUserByUsernameSQL = `SELECT ` + userColumns + `
		FROM users WHERE username = $1 AND lifecycle <> 'deleted'`

	usernameExistsSQL = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	emailExistsSQL = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	createUserSQL = `INSERT INTO users (id, username, email, password_hash, full_name, lifecycle)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateUserSQL = `UPDATE users SET email = $2, password_hash = $3, full_name = $4
		WHERE id = $1 AND lifecycle <> 'deleted'`

	setUserLifecycleSQL = `UPDATE users SET lifecycle = $2 WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns a single non-deleted user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

// GetByUsername returns a single non-deleted user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, getUserByUsernameSQL, username)
}

func (r *UserRepository) getOne(ctx context.Context, query, arg string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", arg, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", arg, err)
	}
	return &u, nil
}

// UsernameExists reports whether any account ever claimed the username.
// Deleted accounts keep their usernames reserved.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, usernameExistsSQL, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking username %q: %w", username, err)
	}
	return exists, nil
}

// EmailExists reports whether any account ever claimed the email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, emailExistsSQL, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking email %q: %w", email, err)
	}
	return exists, nil
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL, u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.Lifecycle)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", u.ID, err)
	}
	return nil
}

// Update edits a user's mutable profile fields. Username is fixed at
// registration.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.pool.Exec(ctx, updateUserSQL, u.ID, u.Email, u.PasswordHash, u.FullName)
	if err != nil {
		return fmt.Errorf("updating user %q: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// SetLifecycle moves a user to a new lifecycle state.
func (r *UserRepository) SetLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	tag, err := r.pool.Exec(ctx, setUserLifecycleSQL, id, state)
	if err != nil {
		return fmt.Errorf("setting user %q lifecycle: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Lifecycle, &u.CreatedAt)
	return u, err
}
