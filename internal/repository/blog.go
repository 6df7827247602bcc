package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/blog"
	"github.com/corvel/storefront/internal/domain/lifecycle"
)

const (
	postColumns = `id, title, COALESCE(slug, ''), body, published, view_count, lifecycle, created_at, updated_at`

	getPostByIDSQL = `SELECT ` + postColumns + `
		FROM blog_posts WHERE id = $1 AND lifecycle <> 'deleted'`

	getPostBySlugSQL = `SELECT ` + postColumns + `
		FROM blog_posts WHERE slug = $1 AND lifecycle <> 'deleted'`

	slugExistsSQL = `SELECT EXISTS (
		SELECT 1 FROM blog_posts WHERE slug = $1 AND id <> $2)`

	createPostSQL = `INSERT INTO blog_posts (id, title, slug, body, published, lifecycle)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updatePostSQL = `UPDATE blog_posts
		SET title = $2, slug = $3, body = $4, published = $5, updated_at = now()
		WHERE id = $1 AND lifecycle <> 'deleted'`

	setPostLifecycleSQL = `UPDATE blog_posts SET lifecycle = $2, updated_at = now() WHERE id = $1`

	incrementViewsSQL = `UPDATE blog_posts SET view_count = view_count + 1 WHERE id = $1`
)

var _ blog.Repository = (*BlogRepository)(nil)

// BlogRepository implements blog.Repository backed by PostgreSQL.
type BlogRepository struct {
	pool *pgxpool.Pool
}

// NewBlogRepository returns a BlogRepository that uses the given pool.
func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// List returns posts newest first. Deleted posts never appear; slug
// uniqueness checks go through SlugExists which does see them.
func (r *BlogRepository) List(ctx context.Context, p blog.Page) ([]blog.Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE lifecycle <> 'deleted'`
	args := []any{}
	if p.PublishedOnly {
		query += ` AND published AND lifecycle = 'active'`
	}
	query += ` ORDER BY created_at DESC, id`
	if p.Limit > 0 {
		args = append(args, p.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if p.Offset > 0 {
		args = append(args, p.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return pgx.CollectRows(rows, scanPost)
}

// GetByID returns a single non-deleted post.
func (r *BlogRepository) GetByID(ctx context.Context, id string) (*blog.Post, error) {
	return r.getOne(ctx, getPostByIDSQL, id)
}

// GetBySlug returns a single non-deleted post by slug.
func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	return r.getOne(ctx, getPostBySlugSQL, slug)
}

func (r *BlogRepository) getOne(ctx context.Context, query, arg string) (*blog.Post, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting post %q: %w", arg, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("getting post %q: %w", arg, err)
	}
	return &p, nil
}

// SlugExists reports whether a slug is held by any row other than excludeID.
// Deleted posts keep their slug reserved, matching the UNIQUE constraint.
func (r *BlogRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, slugExistsSQL, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return exists, nil
}

// Create inserts a new post.
func (r *BlogRepository) Create(ctx context.Context, p *blog.Post) error {
	_, err := r.pool.Exec(ctx, createPostSQL, p.ID, p.Title, p.Slug, p.Body, p.Published, p.Lifecycle)
	if err != nil {
		return fmt.Errorf("creating post %q: %w", p.ID, err)
	}
	return nil
}

// Update edits a post in place.
func (r *BlogRepository) Update(ctx context.Context, p *blog.Post) error {
	tag, err := r.pool.Exec(ctx, updatePostSQL, p.ID, p.Title, p.Slug, p.Body, p.Published)
	if err != nil {
		return fmt.Errorf("updating post %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// SetLifecycle moves a post to a new lifecycle state.
func (r *BlogRepository) SetLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	tag, err := r.pool.Exec(ctx, setPostLifecycleSQL, id, state)
	if err != nil {
		return fmt.Errorf("setting post %q lifecycle: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter atomically in the database, so
// concurrent readers never lose a count.
func (r *BlogRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, incrementViewsSQL, id)
	if err != nil {
		return fmt.Errorf("incrementing views of post %q: %w", id, err)
	}
	return nil
}

func scanPost(row pgx.CollectableRow) (blog.Post, error) {
	var p blog.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Body, &p.Published, &p.ViewCount,
		&p.Lifecycle, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
