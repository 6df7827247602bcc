package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrInvalidSortKey is returned when a list request carries an unknown sort key.
var ErrInvalidSortKey = errors.New("invalid sort key")

// Product represents a catalog item available for purchase.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    string
	Lifecycle     lifecycle.State
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available reports whether the product can be sold in the given quantity.
func (p Product) Available(quantity int) bool {
	return p.Lifecycle == lifecycle.Active && p.StockQuantity >= quantity
}

// SortKey enumerates the supported catalog sort columns. Unknown keys are
// rejected at parse time rather than silently falling back to a default.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByPrice  SortKey = "price"
	SortByStock  SortKey = "stock"
	SortByNewest SortKey = "newest"
)

// ParseSortKey validates a caller-supplied sort key. An empty key defaults to
// name ordering; anything else unknown is an error.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortByName, nil
	case SortByName, SortByPrice, SortByStock, SortByNewest:
		return SortKey(s), nil
	default:
		return "", errors.Wrapf(ErrInvalidSortKey, "%q", s)
	}
}

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	CategoryID string
	Search     string
	ActiveOnly bool
	Sort       SortKey
	Descending bool
	Offset     int
	Limit      int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetLifecycle(ctx context.Context, id string, state lifecycle.State) error
	AdjustStock(ctx context.Context, id string, delta int) error
}
