package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/faq"
	"github.com/corvel/storefront/internal/domain/lifecycle"
)

const (
	listFAQCategoriesSQL = `SELECT id, name, display_order, lifecycle
		FROM faq_categories WHERE lifecycle <> 'deleted' ORDER BY display_order, name`

	listVisibleFAQCategoriesSQL = `SELECT id, name, display_order, lifecycle
		FROM faq_categories WHERE lifecycle = 'active' ORDER BY display_order, name`

	getFAQCategorySQL = `SELECT id, name, display_order, lifecycle
		FROM faq_categories WHERE id = $1 AND lifecycle <> 'deleted'`

	faqCategoryNameExistsSQL = `SELECT EXISTS (
		SELECT 1 FROM faq_categories WHERE name = $1 AND id <> $2 AND lifecycle <> 'deleted')`

	createFAQCategorySQL = `INSERT INTO faq_categories (id, name, display_order, lifecycle)
		VALUES ($1, $2, $3, $4)`

	maxFAQCategoryOrderSQL = `SELECT COALESCE(max(display_order), 0)
		FROM faq_categories WHERE lifecycle <> 'deleted'`

	setFAQCategoryOrderSQL = `UPDATE faq_categories SET display_order = $2 WHERE id = $1`

	listFAQsSQL = `SELECT id, category_id, question, answer, display_order, lifecycle
		FROM faqs WHERE category_id = $1 AND lifecycle <> 'deleted' ORDER BY display_order, id`

	listVisibleFAQsSQL = `SELECT id, category_id, question, answer, display_order, lifecycle
		FROM faqs WHERE category_id = $1 AND lifecycle = 'active' ORDER BY display_order, id`

	getFAQSQL = `SELECT id, category_id, question, answer, display_order, lifecycle
		FROM faqs WHERE id = $1 AND lifecycle <> 'deleted'`

	createFAQSQL = `INSERT INTO faqs (id, category_id, question, answer, display_order, lifecycle)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateFAQSQL = `UPDATE faqs SET category_id = $2, question = $3, answer = $4, display_order = $5
		WHERE id = $1 AND lifecycle <> 'deleted'`

	setFAQLifecycleSQL = `UPDATE faqs SET lifecycle = $2 WHERE id = $1`

	maxFAQOrderSQL = `SELECT COALESCE(max(display_order), 0)
		FROM faqs WHERE category_id = $1 AND lifecycle <> 'deleted'`

	setFAQOrderSQL = `UPDATE faqs SET display_order = $2 WHERE id = $1`
)

var _ faq.Repository = (*FAQRepository)(nil)

// FAQRepository implements faq.Repository backed by PostgreSQL.
type FAQRepository struct {
	pool *pgxpool.Pool
}

// NewFAQRepository returns a FAQRepository that uses the given pool.
func NewFAQRepository(pool *pgxpool.Pool) *FAQRepository {
	return &FAQRepository{pool: pool}
}

// ListCategories returns FAQ categories in display order.
func (r *FAQRepository) ListCategories(ctx context.Context, visibleOnly bool) ([]faq.Category, error) {
	query := listFAQCategoriesSQL
	if visibleOnly {
		query = listVisibleFAQCategoriesSQL
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing faq categories: %w", err)
	}
	return pgx.CollectRows(rows, scanFAQCategory)
}

// GetCategory returns a single non-deleted FAQ category.
func (r *FAQRepository) GetCategory(ctx context.Context, id string) (*faq.Category, error) {
	rows, err := r.pool.Query(ctx, getFAQCategorySQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting faq category %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanFAQCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, faq.ErrNotFound
		}
		return nil, fmt.Errorf("getting faq category %q: %w", id, err)
	}
	return &c, nil
}

// CategoryNameExists reports whether a non-deleted category other than
// excludeID already uses the name.
func (r *FAQRepository) CategoryNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, faqCategoryNameExistsSQL, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking faq category name %q: %w", name, err)
	}
	return exists, nil
}

// CreateCategory inserts a new FAQ category.
func (r *FAQRepository) CreateCategory(ctx context.Context, c *faq.Category) error {
	_, err := r.pool.Exec(ctx, createFAQCategorySQL, c.ID, c.Name, c.DisplayOrder, c.Lifecycle)
	if err != nil {
		return fmt.Errorf("creating faq category %q: %w", c.ID, err)
	}
	return nil
}

// MaxCategoryOrder returns the highest display order among non-deleted
// categories, or 0 when there are none.
func (r *FAQRepository) MaxCategoryOrder(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, maxFAQCategoryOrderSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("getting max faq category order: %w", err)
	}
	return n, nil
}

// ReorderCategories applies all order updates in one transaction.
func (r *FAQRepository) ReorderCategories(ctx context.Context, orders map[string]int) error {
	return r.applyOrders(ctx, setFAQCategoryOrderSQL, orders)
}

// ListByCategory returns the FAQs of a category in display order.
func (r *FAQRepository) ListByCategory(ctx context.Context, categoryID string, visibleOnly bool) ([]faq.FAQ, error) {
	query := listFAQsSQL
	if visibleOnly {
		query = listVisibleFAQsSQL
	}
	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing faqs of category %q: %w", categoryID, err)
	}
	return pgx.CollectRows(rows, scanFAQ)
}

// GetByID returns a single non-deleted FAQ.
func (r *FAQRepository) GetByID(ctx context.Context, id string) (*faq.FAQ, error) {
	rows, err := r.pool.Query(ctx, getFAQSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting faq %q: %w", id, err)
	}

	f, err := pgx.CollectExactlyOneRow(rows, scanFAQ)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, faq.ErrNotFound
		}
		return nil, fmt.Errorf("getting faq %q: %w", id, err)
	}
	return &f, nil
}

// Create inserts a new FAQ.
func (r *FAQRepository) Create(ctx context.Context, f *faq.FAQ) error {
	_, err := r.pool.Exec(ctx, createFAQSQL, f.ID, f.CategoryID, f.Question, f.Answer, f.DisplayOrder, f.Lifecycle)
	if err != nil {
		return fmt.Errorf("creating faq %q: %w", f.ID, err)
	}
	return nil
}

// Update edits a FAQ in place.
func (r *FAQRepository) Update(ctx context.Context, f *faq.FAQ) error {
	tag, err := r.pool.Exec(ctx, updateFAQSQL, f.ID, f.CategoryID, f.Question, f.Answer, f.DisplayOrder)
	if err != nil {
		return fmt.Errorf("updating faq %q: %w", f.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return faq.ErrNotFound
	}
	return nil
}

// SetLifecycle moves a FAQ to a new lifecycle state.
func (r *FAQRepository) SetLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	tag, err := r.pool.Exec(ctx, setFAQLifecycleSQL, id, state)
	if err != nil {
		return fmt.Errorf("setting faq %q lifecycle: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return faq.ErrNotFound
	}
	return nil
}

// MaxOrderInCategory returns the highest display order among non-deleted
// FAQs of the category, or 0 when there are none.
func (r *FAQRepository) MaxOrderInCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, maxFAQOrderSQL, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("getting max faq order of category %q: %w", categoryID, err)
	}
	return n, nil
}

// Reorder applies all order updates in one transaction.
func (r *FAQRepository) Reorder(ctx context.Context, orders map[string]int) error {
	return r.applyOrders(ctx, setFAQOrderSQL, orders)
}

func (r *FAQRepository) applyOrders(ctx context.Context, query string, orders map[string]int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning reorder transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for id, ord := range orders {
		tag, err := tx.Exec(ctx, query, id, ord)
		if err != nil {
			return fmt.Errorf("reordering %q: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return faq.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

func scanFAQCategory(row pgx.CollectableRow) (faq.Category, error) {
	var c faq.Category
	err := row.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.Lifecycle)
	return c, err
}

func scanFAQ(row pgx.CollectableRow) (faq.FAQ, error) {
	var f faq.FAQ
	err := row.Scan(&f.ID, &f.CategoryID, &f.Question, &f.Answer, &f.DisplayOrder, &f.Lifecycle)
	return f, err
}
