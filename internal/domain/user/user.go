package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("username already in use")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials is returned when authentication fails. Disabled
	// and deleted accounts fail the same way so account state does not leak.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingFields is returned when registration input is incomplete.
	ErrMissingFields = errors.New("username, email and password required")
)

// User is a storefront account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Lifecycle    lifecycle.State
	CreatedAt    time.Time
}

// PasswordHasher abstracts the hashing primitive, which stays outside this
// module.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Repository defines persistence operations for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	SetLifecycle(ctx context.Context, id string, state lifecycle.State) error
}
