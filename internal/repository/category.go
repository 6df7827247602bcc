package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/category"
	"github.com/corvel/storefront/internal/domain/lifecycle"
)

const (
	listCategoriesSQL = `SELECT id, name, description, lifecycle, created_at
		FROM categories WHERE lifecycle <> 'deleted' ORDER BY name`

	listVisibleCategoriesSQL = `SELECT id, name, description, lifecycle, created_at
		FROM categories WHERE lifecycle = 'active' ORDER BY name`

	getCategoryByIDSQL = `SELECT id, name, description, lifecycle, created_at
		FROM categories WHERE id = $1 AND lifecycle <> 'deleted'`

	categoryNameExistsSQL = `SELECT EXISTS (
		SELECT 1 FROM categories WHERE name = $1 AND id <> $2 AND lifecycle <> 'deleted')`

	createCategorySQL = `INSERT INTO categories (id, name, description, lifecycle)
		VALUES ($1, $2, $3, $4)`

	updateCategorySQL = `UPDATE categories SET name = $2, description = $3
		WHERE id = $1 AND lifecycle <> 'deleted'`

	setCategoryLifecycleSQL = `UPDATE categories SET lifecycle = $2 WHERE id = $1`

	countLiveProductsSQL = `SELECT count(*) FROM products
		WHERE category_id = $1 AND lifecycle <> 'deleted'`
)

var _ category.Repository = (*CategoryRepository)(nil)

// CategoryRepository implements category.Repository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns categories ordered by name; visibleOnly limits to active ones.
func (r *CategoryRepository) List(ctx context.Context, visibleOnly bool) ([]category.Category, error) {
	query := listCategoriesSQL
	if visibleOnly {
		query = listVisibleCategoriesSQL
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetByID returns a single non-deleted category.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	rows, err := r.pool.Query(ctx, getCategoryByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrNotFound
		}
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}
	return &c, nil
}

// ExistsByName reports whether a non-deleted category other than excludeID
// already uses the name.
func (r *CategoryRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, categoryNameExistsSQL, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking category name %q: %w", name, err)
	}
	return exists, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	_, err := r.pool.Exec(ctx, createCategorySQL, c.ID, c.Name, c.Description, c.Lifecycle)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.ID, err)
	}
	return nil
}

// Update edits a category's name and description.
func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.ID, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

// SetLifecycle moves a category to a new lifecycle state.
func (r *CategoryRepository) SetLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	tag, err := r.pool.Exec(ctx, setCategoryLifecycleSQL, id, state)
	if err != nil {
		return fmt.Errorf("setting category %q lifecycle: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}
	return nil
}

// CountLiveProducts counts non-deleted products still attached to the category.
func (r *CategoryRepository) CountLiveProducts(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countLiveProductsSQL, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products of category %q: %w", id, err)
	}
	return n, nil
}

func scanCategory(row pgx.CollectableRow) (category.Category, error) {
	var c category.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Lifecycle, &c.CreatedAt)
	return c, err
}
