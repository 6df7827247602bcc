package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/lifecycle"
	"github.com/corvel/storefront/internal/domain/slider"
)

const (
	listSlidersSQL = `SELECT id, title, image_url, link_url, display_order, lifecycle
		FROM sliders WHERE lifecycle <> 'deleted' ORDER BY display_order, id`

	listVisibleSlidersSQL = `SELECT id, title, image_url, link_url, display_order, lifecycle
		FROM sliders WHERE lifecycle = 'active' ORDER BY display_order, id`

	getSliderSQL = `SELECT id, title, image_url, link_url, display_order, lifecycle
		FROM sliders WHERE id = $1 AND lifecycle <> 'deleted'`

	createSliderSQL = `INSERT INTO sliders (id, title, image_url, link_url, display_order, lifecycle)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateSliderSQL = `UPDATE sliders SET title = $2, image_url = $3, link_url = $4, display_order = $5
		WHERE id = $1 AND lifecycle <> 'deleted'`

	setSliderLifecycleSQL = `UPDATE sliders SET lifecycle = $2 WHERE id = $1`

	maxSliderOrderSQL = `SELECT COALESCE(max(display_order), 0)
		FROM sliders WHERE lifecycle <> 'deleted'`

	setSliderOrderSQL = `UPDATE sliders SET display_order = $2 WHERE id = $1`
)

var _ slider.Repository = (*SliderRepository)(nil)

// SliderRepository implements slider.Repository backed by PostgreSQL.
type SliderRepository struct {
	pool *pgxpool.Pool
}

// NewSliderRepository returns a SliderRepository that uses the given pool.
func NewSliderRepository(pool *pgxpool.Pool) *SliderRepository {
	return &SliderRepository{pool: pool}
}

// List returns sliders in display order.
func (r *SliderRepository) List(ctx context.Context, visibleOnly bool) ([]slider.Slider, error) {
	query := listSlidersSQL
	if visibleOnly {
		query = listVisibleSlidersSQL
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing sliders: %w", err)
	}
	return pgx.CollectRows(rows, scanSlider)
}

// GetByID returns a single non-deleted slider.
func (r *SliderRepository) GetByID(ctx context.Context, id string) (*slider.Slider, error) {
	rows, err := r.pool.Query(ctx, getSliderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting slider %q: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSlider)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, slider.ErrNotFound
		}
		return nil, fmt.Errorf("getting slider %q: %w", id, err)
	}
	return &s, nil
}

// Create inserts a new slider.
func (r *SliderRepository) Create(ctx context.Context, s *slider.Slider) error {
	_, err := r.pool.Exec(ctx, createSliderSQL, s.ID, s.Title, s.ImageURL, s.LinkURL, s.DisplayOrder, s.Lifecycle)
	if err != nil {
		return fmt.Errorf("creating slider %q: %w", s.ID, err)
	}
	return nil
}

// Update edits a slider in place.
func (r *SliderRepository) Update(ctx context.Context, s *slider.Slider) error {
	tag, err := r.pool.Exec(ctx, updateSliderSQL, s.ID, s.Title, s.ImageURL, s.LinkURL, s.DisplayOrder)
	if err != nil {
		return fmt.Errorf("updating slider %q: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return slider.ErrNotFound
	}
	return nil
}

// SetLifecycle moves a slider to a new lifecycle state.
func (r *SliderRepository) SetLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	tag, err := r.pool.Exec(ctx, setSliderLifecycleSQL, id, state)
	if err != nil {
		return fmt.Errorf("setting slider %q lifecycle: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return slider.ErrNotFound
	}
	return nil
}

// MaxOrder returns the highest display order among non-deleted sliders, or 0
// when there are none.
func (r *SliderRepository) MaxOrder(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, maxSliderOrderSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("getting max slider order: %w", err)
	}
	return n, nil
}

// Reorder applies all order updates in one transaction.
func (r *SliderRepository) Reorder(ctx context.Context, orders map[string]int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning reorder transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for id, ord := range orders {
		tag, err := tx.Exec(ctx, setSliderOrderSQL, id, ord)
		if err != nil {
			return fmt.Errorf("reordering slider %q: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return slider.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

func scanSlider(row pgx.CollectableRow) (slider.Slider, error) {
	var s slider.Slider
	err := row.Scan(&s.ID, &s.Title, &s.ImageURL, &s.LinkURL, &s.DisplayOrder, &s.Lifecycle)
	return s, err
}
