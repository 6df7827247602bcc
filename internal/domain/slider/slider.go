package slider

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

var (
	// ErrNotFound is returned when a slider does not exist.
	ErrNotFound = errors.New("slider not found")
	// ErrMissingImage is returned when a slider has no image URL.
	ErrMissingImage = errors.New("slider image url required")
	// ErrInvalidOrder is returned when a reorder request carries a
	// non-positive display order.
	ErrInvalidOrder = errors.New("display order must be greater than 0")
)

// Slider is a homepage banner. DisplayOrder is a global sort key.
type Slider struct {
	ID           string
	Title        string
	ImageURL     string
	LinkURL      string
	DisplayOrder int
	Lifecycle    lifecycle.State
}

// Repository defines persistence operations for sliders.
type Repository interface {
	List(ctx context.Context, visibleOnly bool) ([]Slider, error)
	GetByID(ctx context.Context, id string) (*Slider, error)
	Create(ctx context.Context, s *Slider) error
	Update(ctx context.Context, s *Slider) error
	SetLifecycle(ctx context.Context, id string, state lifecycle.State) error
	// MaxOrder returns the highest display order among non-deleted sliders,
	// or 0 when there are none.
	MaxOrder(ctx context.Context) (int, error)
	// Reorder applies all updates in one transaction.
	Reorder(ctx context.Context, orders map[string]int) error
}
