package blog

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

var (
	// ErrNotFound is returned when a requested post does not exist.
	ErrNotFound = errors.New("blog post not found")
	// ErrEmptyTitle is returned when a post title is blank.
	ErrEmptyTitle = errors.New("post title required")
	// ErrSlugExhausted is returned when the slug suffix retry ceiling is hit.
	ErrSlugExhausted = errors.New("slug generation exhausted")
)

// Post is a blog entry. Slug is globally unique once assigned.
type Post struct {
	ID        string
	Title     string
	Slug      string
	Body      string
	Published bool
	ViewCount int64
	Lifecycle lifecycle.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Page narrows a post listing.
type Page struct {
	PublishedOnly bool
	Offset        int
	Limit         int
}

// Repository defines persistence operations for blog posts.
type Repository interface {
	List(ctx context.Context, p Page) ([]Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	// SlugExists reports whether a slug is taken by a row other than excludeID.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	SetLifecycle(ctx context.Context, id string, state lifecycle.State) error
	// IncrementViews bumps the view counter. Lost updates between concurrent
	// readers are acceptable; this is not a financial field.
	IncrementViews(ctx context.Context, id string) error
}
