package category

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

// Service encapsulates category management rules: name uniqueness and the
// delete guard for categories that still hold products.
type Service struct {
	repo Repository
}

// NewService creates a category Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns categories ordered by name, optionally restricted to those
// visible on the storefront.
func (s *Service) List(ctx context.Context, visibleOnly bool) ([]Category, error) {
	return s.repo.List(ctx, visibleOnly)
}

// Create adds a new category. Names are unique case-insensitively.
func (s *Service) Create(ctx context.Context, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	taken, err := s.repo.ExistsByName(ctx, name, "")
	if err != nil {
		return nil, errors.Wrap(err, "check name")
	}
	if taken {
		return nil, ErrNameTaken
	}

	c := &Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Lifecycle:   lifecycle.Active,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return c, nil
}

// Rename changes a category's name, enforcing uniqueness against siblings.
func (s *Service) Rename(ctx context.Context, id, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByName(ctx, name, id)
	if err != nil {
		return nil, errors.Wrap(err, "check name")
	}
	if taken {
		return nil, ErrNameTaken
	}

	c.Name = name
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "update category")
	}
	return c, nil
}

// Delete tombstones a category. A category that still has non-deleted
// products cannot be removed.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.repo.CountLiveProducts(ctx, id)
	if err != nil {
		return errors.Wrap(err, "count products")
	}
	if n > 0 {
		return ErrHasProducts
	}

	next, err := c.Lifecycle.Transition(lifecycle.Deleted)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}

// SetDisabled hides or re-enables a category on the storefront.
func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	target := lifecycle.Active
	if disabled {
		target = lifecycle.Disabled
	}
	next, err := c.Lifecycle.Transition(target)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}
