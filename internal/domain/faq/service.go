package faq

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

// Service manages FAQs and FAQ categories, assigning display orders when the
// caller does not (order 0 is the "assign for me" sentinel).
type Service struct {
	repo Repository
}

// NewService creates a FAQ Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateCategory adds a FAQ category at the end of the global ordering unless
// an explicit positive order is supplied.
func (s *Service) CreateCategory(ctx context.Context, name string, displayOrder int) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if displayOrder < 0 {
		return nil, ErrInvalidOrder
	}

	taken, err := s.repo.CategoryNameExists(ctx, name, "")
	if err != nil {
		return nil, errors.Wrap(err, "check name")
	}
	if taken {
		return nil, ErrNameTaken
	}

	if displayOrder == 0 {
		max, err := s.repo.MaxCategoryOrder(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "max order")
		}
		displayOrder = max + 1
	}

	c := &Category{
		ID:           uuid.New().String(),
		Name:         name,
		DisplayOrder: displayOrder,
		Lifecycle:    lifecycle.Active,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return c, nil
}

// Create adds a FAQ at the end of its category's ordering unless an explicit
// positive order is supplied.
func (s *Service) Create(ctx context.Context, categoryID, question, answer string, displayOrder int) (*FAQ, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if displayOrder < 0 {
		return nil, ErrInvalidOrder
	}

	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	if displayOrder == 0 {
		max, err := s.repo.MaxOrderInCategory(ctx, categoryID)
		if err != nil {
			return nil, errors.Wrap(err, "max order")
		}
		displayOrder = max + 1
	}

	f := &FAQ{
		ID:           uuid.New().String(),
		CategoryID:   categoryID,
		Question:     question,
		Answer:       answer,
		DisplayOrder: displayOrder,
		Lifecycle:    lifecycle.Active,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, errors.Wrap(err, "create faq")
	}
	return f, nil
}

// Edit rewrites a FAQ. A zero display order keeps the current one; moving to
// another category keeps the explicit order rather than reassigning.
func (s *Service) Edit(ctx context.Context, id, categoryID, question, answer string, displayOrder int) (*FAQ, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if displayOrder < 0 {
		return nil, ErrInvalidOrder
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if categoryID != "" && categoryID != f.CategoryID {
		if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		f.CategoryID = categoryID
	}

	f.Question = question
	f.Answer = answer
	if displayOrder > 0 {
		f.DisplayOrder = displayOrder
	}
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, errors.Wrap(err, "update faq")
	}
	return f, nil
}

// Reorder applies a bulk id-to-order mapping for FAQs in one transaction.
// Ids absent from the mapping keep their current order.
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

// ReorderCategories applies a bulk id-to-order mapping for categories in one
// transaction.
func (s *Service) ReorderCategories(ctx context.Context, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}
	for _, o := range orders {
		if o < 1 {
			return ErrInvalidOrder
		}
	}
	return s.repo.ReorderCategories(ctx, orders)
}

// Delete tombstones a FAQ.
func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	next, err := f.Lifecycle.Transition(lifecycle.Deleted)
	if err != nil {
		return err
	}
	return s.repo.SetLifecycle(ctx, id, next)
}

// ListByCategory returns the category's FAQs in display order.
func (s *Service) ListByCategory(ctx context.Context, categoryID string, visibleOnly bool) ([]FAQ, error) {
	return s.repo.ListByCategory(ctx, categoryID, visibleOnly)
}

// Categories returns FAQ categories in display order.
func (s *Service) Categories(ctx context.Context, visibleOnly bool) ([]Category, error) {
	return s.repo.ListCategories(ctx, visibleOnly)
}
