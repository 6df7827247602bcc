package slider

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

// Service manages homepage sliders and their global ordering.
type Service struct {
	repo Repository
}

// NewService creates a slider Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a slider at the end of the global ordering unless an explicit
// positive order is supplied (0 means "assign for me").
func (s *Service) Create(ctx context.Context, title, imageURL, linkURL string, displayOrder int) (*Slider, error) {
	if imageURL == "" {
		return nil, ErrMissingImage
	}
	if displayOrder < 0 {
		return nil, ErrInvalidOrder
	}

	if displayOrder == 0 {
		max, err := s.repo.MaxOrder(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "max order")
		}
		displayOrder = max + 1
	}

	sl := &Slider{
		ID:           uuid.New().String(),
		Title:        title,
		ImageURL:     imageURL,
		LinkURL:      linkURL,
		DisplayOrder: displayOrder,
		Lifecycle:    lifecycle.Active,
	}
	if err := s.repo.Create(ctx, sl); err != nil {
		return nil, errors.Wrap(err, "create slider")
	}
	return sl, nil
}

// Edit rewrites a slider. A zero display order keeps the current one.
func (s *Service) Edit(ctx context.Context, id, title, imageURL, linkURL string, displayOrder int) (*Slider, error) {
	if imageURL == "" {
		return nil, ErrMissingImage
	}
	if displayOrder < 0 {
		return nil, ErrInvalidOrder
	}

	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sl.Title = title
	sl.ImageURL = imageURL
	sl.LinkURL = linkURL
	if displayOrder > 0 {
		sl.DisplayOrder = displayOrder
	}
	if err := s.repo.Update(ctx, sl); err != nil {
		return nil, errors.Wrap(err, "update slider")
	}
	return sl, nil
}

// Reorder applies a bulk id-to-order mapping in one transaction.
func (s *Service) Reorder(ctx context.Context, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}
	for _, o := range orders {
		if o < 1 {
			return ErrInvalidOrder
		}
	}
	return s.repo.Reorder(ctx, orders)
}

// SetDisabled hides or re-enables a slider.
func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	target := lifecycle.Active
	if disabled {
		target = lifecycle.Disabled
	}
	next, err := sl.Lifecycle.Transition(target)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}

// Delete tombstones a slider.
func (s *Service) Delete(ctx context.Context, id string) error {
	sl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	next, err := sl.Lifecycle.Transition(lifecycle.Deleted)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}

// List returns sliders in display order.
func (s *Service) List(ctx context.Context, visibleOnly bool) ([]Slider, error) {
	return s.repo.List(ctx, visibleOnly)
}
