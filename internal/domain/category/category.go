package category

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

var (
	// ErrNotFound is returned when a requested category does not exist.
	ErrNotFound = errors.New("category not found")
	// ErrNameTaken is returned when a category name is already in use.
	ErrNameTaken = errors.New("category name already in use")
	// ErrHasProducts is returned when deleting a category that still has
	// non-deleted products.
	ErrHasProducts = errors.New("category has products")
	// ErrEmptyName is returned when the category name is blank.
	ErrEmptyName = errors.New("category name required")
)

// Category groups products for storefront navigation.
type Category struct {
	ID          string
	Name        string
	Description string
	Lifecycle   lifecycle.State
	CreatedAt   time.Time
}

// Repository defines persistence operations for categories.
type Repository interface {
	List(ctx context.Context, visibleOnly bool) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	SetLifecycle(ctx context.Context, id string, state lifecycle.State) error
	CountLiveProducts(ctx context.Context, id string) (int, error)
}
