package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

var (
	// ErrMissingFields is returned when a product lacks a SKU or name.
	ErrMissingFields = errors.New("product sku and name required")
	// ErrNegativePrice is returned when a product price is below zero.
	ErrNegativePrice = errors.New("product price must not be negative")
)

// Service manages the catalog from the back office side. Storefront reads go
// straight to the Repository.
type Service struct {
	repo Repository
}

// NewService creates a product Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a catalog item.
func (s *Service) Create(ctx context.Context, p Product) (*Product, error) {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	if p.SKU == "" || p.Name == "" {
		return nil, ErrMissingFields
	}
	if p.Price.LessThan(decimal.Zero) {
		return nil, ErrNegativePrice
	}

	p.ID = uuid.New().String()
	p.Lifecycle = lifecycle.Active
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return &p, nil
}

// Update edits a catalog item. Lifecycle is not touched here; use
// SetDisabled/Delete for state changes.
func (s *Service) Update(ctx context.Context, p Product) (*Product, error) {
	if p.Price.LessThan(decimal.Zero) {
		return nil, ErrNegativePrice
	}

	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Lifecycle = current.Lifecycle
	p.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return &p, nil
}

// SetDisabled pulls a product from (or returns it to) the storefront.
func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	target := lifecycle.Active
	if disabled {
		target = lifecycle.Disabled
	}
	next, err := p.Lifecycle.Transition(target)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}

// Delete tombstones a product. Order items keep their snapshot of it.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	next, err := p.Lifecycle.Transition(lifecycle.Deleted)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}

// Restock adjusts inventory by delta, which may be negative for corrections.
func (s *Service) Restock(ctx context.Context, id string, delta int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.AdjustStock(ctx, id, delta)
}
