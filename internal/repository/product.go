package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corvel/storefront/internal/domain/lifecycle"
	"github.com/corvel/storefront/internal/domain/product"
)

const (
	productColumns = `id, sku, name, description, price, stock_quantity, COALESCE(category_id, ''), lifecycle, created_at, updated_at`

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = $1 AND lifecycle <> 'deleted'`

	getProductsByIDsSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = ANY($1) AND lifecycle <> 'deleted'`

	createProductSQL = `INSERT INTO products (id, sku, name, description, price, stock_quantity, category_id, lifecycle)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`

	updateProductSQL = `UPDATE products
		SET sku = $2, name = $3, description = $4, price = $5, stock_quantity = $6,
		    category_id = NULLIF($7, ''), updated_at = now()
		WHERE id = $1 AND lifecycle <> 'deleted'`

	setProductLifecycleSQL = `UPDATE products SET lifecycle = $2, updated_at = now() WHERE id = $1`

	adjustStockSQL = `UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1 AND stock_quantity + $2 >= 0`

	decrementStockSQL = `UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND lifecycle = 'active' AND stock_quantity >= $2`
)

// sortColumns maps domain sort keys to ORDER BY expressions. Keys outside
// this table never reach the repository; ParseSortKey rejects them upstream.
var sortColumns = map[product.SortKey]string{
	product.SortByName:   "name",
	product.SortByPrice:  "price",
	product.SortByStock:  "stock_quantity",
	product.SortByNewest: "created_at",
}

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns catalog products narrowed and ordered by the filter.
func (r *ProductRepository) List(ctx context.Context, f product.ListFilter) ([]product.Product, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + productColumns + ` FROM products WHERE lifecycle <> 'deleted'`)

	if f.ActiveOnly {
		sb.WriteString(` AND lifecycle = 'active'`)
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		fmt.Fprintf(&sb, ` AND category_id = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		fmt.Fprintf(&sb, ` AND (name ILIKE $%d OR description ILIKE $%d)`, len(args), len(args))
	}

	col, ok := sortColumns[f.Sort]
	if !ok {
		return nil, product.ErrInvalidSortKey
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, ` ORDER BY %s %s, id`, col, dir)

	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single non-deleted product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs. Missing IDs are
// simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a new catalog product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.SKU, p.Name, p.Description, p.Price, p.StockQuantity, p.CategoryID, p.Lifecycle,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update edits an existing product in place.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.SKU, p.Name, p.Description, p.Price, p.StockQuantity, p.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// SetLifecycle moves a product to a new lifecycle state.
func (r *ProductRepository) SetLifecycle(ctx context.Context, id string, state lifecycle.State) error {
	tag, err := r.pool.Exec(ctx, setProductLifecycleSQL, id, state)
	if err != nil {
		return fmt.Errorf("setting product %q lifecycle: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// AdjustStock shifts inventory by delta. The guard keeps stock from going
// negative on corrections.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	tag, err := r.pool.Exec(ctx, adjustStockSQL, id, delta)
	if err != nil {
		return fmt.Errorf("adjusting stock of %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &price, &p.StockQuantity,
		&p.CategoryID, &p.Lifecycle, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Price = price
	return p, err
}
