package faq

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

var (
	// ErrNotFound is returned when a FAQ or FAQ category does not exist.
	ErrNotFound = errors.New("faq not found")
	// ErrNameTaken is returned when a category name is already in use.
	ErrNameTaken = errors.New("faq category name already in use")
	// ErrEmptyQuestion is returned when a FAQ question is blank.
	ErrEmptyQuestion = errors.New("faq question required")
	// ErrEmptyName is returned when a FAQ category name is blank.
	ErrEmptyName = errors.New("faq category name required")
	// ErrInvalidOrder is returned when a reorder request carries a
	// non-positive display order.
	ErrInvalidOrder = errors.New("display order must be greater than 0")
)

// Category groups FAQs; its display order is a global sort key.
type Category struct {
	ID           string
	Name         string
	DisplayOrder int
	Lifecycle    lifecycle.State
}

// FAQ is a question/answer pair ordered within its category. DisplayOrder is
// only a sort key: values need not be contiguous or unique.
type FAQ struct {
	ID           string
	CategoryID   string
	Question     string
	Answer       string
	DisplayOrder int
	Lifecycle    lifecycle.State
}

// Repository defines persistence operations for FAQs and their categories.
type Repository interface {
	ListCategories(ctx context.Context, visibleOnly bool) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	CategoryNameExists(ctx context.Context, name, excludeID string) (bool, error)
	CreateCategory(ctx context.Context, c *Category) error
	// MaxCategoryOrder returns the highest display order among non-deleted
	// categories, or 0 when there are none.
	MaxCategoryOrder(ctx context.Context) (int, error)
	// ReorderCategories applies all updates in one transaction.
	ReorderCategories(ctx context.Context, orders map[string]int) error

	ListByCategory(ctx context.Context, categoryID string, visibleOnly bool) ([]FAQ, error)
	GetByID(ctx context.Context, id string) (*FAQ, error)
	Create(ctx context.Context, f *FAQ) error
	Update(ctx context.Context, f *FAQ) error
	SetLifecycle(ctx context.Context, id string, state lifecycle.State) error
	// MaxOrderInCategory returns the highest display order among non-deleted
	// FAQs of the category, or 0 when there are none.
	MaxOrderInCategory(ctx context.Context, categoryID string) (int, error)
	// Reorder applies all updates in one transaction. FAQs not named keep
	// their prior order; no compaction is performed.
	Reorder(ctx context.Context, orders map[string]int) error
}
