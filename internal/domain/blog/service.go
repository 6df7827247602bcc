package blog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

// Service manages blog posts and their slugs.
type Service struct {
	repo Repository
}

// NewService creates a blog Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a draft post, deriving a unique slug from the title.
func (s *Service) Create(ctx context.Context, title, body string) (*Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	slug, err := uniqueSlug(ctx, s.repo, title, "")
	if err != nil {
		return nil, err
	}

	p := &Post{
		ID:        uuid.New().String(),
		Title:     title,
		Slug:      slug,
		Body:      body,
		Lifecycle: lifecycle.Active,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create post")
	}
	return p, nil
}

// Update edits a post. A changed title regenerates the slug; the post's own
// row is excluded from the collision check so an unchanged title keeps the
// slug stable.
func (s *Service) Update(ctx context.Context, id, title, body string) (*Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != p.Title {
		slug, err := uniqueSlug(ctx, s.repo, title, id)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}
	p.Title = title
	p.Body = body

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, "update post")
	}
	return p, nil
}

// SetPublished publishes or unpublishes a post.
func (s *Service) SetPublished(ctx context.Context, id string, published bool) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Published = published
	return s.repo.Update(ctx, p)
}

// Read returns a published post by slug and bumps its view counter.
func (s *Service) Read(ctx context.Context, slug string) (*Post, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.Published || !p.Lifecycle.Visible() {
		return nil, ErrNotFound
	}

	// Counter races between concurrent readers are tolerated.
	if err := s.repo.IncrementViews(ctx, p.ID); err != nil {
		return nil, errors.Wrap(err, "increment views")
	}
	p.ViewCount++
	return p, nil
}

// List returns posts for the storefront or back office.
func (s *Service) List(ctx context.Context, page Page) ([]Post, error) {
	return s.repo.List(ctx, page)
}

// Delete tombstones a post.
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
