package address

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when an address does not exist or is not owned by
// the requesting user. Cross-user lookups deliberately return the same error
// so existence never leaks across accounts.
var ErrNotFound = errors.New("address not found")

// ErrIncomplete is returned when required address fields are blank.
var ErrIncomplete = errors.New("address is incomplete")

// Address is a shipping destination owned by a user. At most one address per
// user carries IsDefault, and exactly one does whenever the user has any.
type Address struct {
	ID            string
	UserID        string
	RecipientName string
	Line1         string
	Line2         string
	City          string
	PostalCode    string
	Country       string
	IsDefault     bool
	CreatedAt     time.Time
}

func (a Address) complete() bool {
	return a.RecipientName != "" && a.Line1 != "" && a.City != "" &&
		a.PostalCode != "" && a.Country != ""
}

// Repository defines persistence operations for shipping addresses. All
// lookups are scoped by owning user.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	// GetByID returns ErrNotFound when the address does not exist or belongs
	// to another user.
	GetByID(ctx context.Context, userID, id string) (*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, userID, id string) error
	// ClearDefaults unsets IsDefault on every address of the user.
	ClearDefaults(ctx context.Context, userID string) error
	// SetDefault marks a single address as the user's default.
	SetDefault(ctx context.Context, userID, id string) error
	// MostRecent returns the most-recently-created address of the user,
	// optionally excluding one id, or ErrNotFound when none remain.
	MostRecent(ctx context.Context, userID, excludeID string) (*Address, error)
}
