package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corvel/storefront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, order_number, user_id, status, subtotal, tax_amount,
		shipping_cost, discount_amount, total_amount, shipping_address_id, tracking_number, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`

	insertPaymentSQL = `INSERT INTO payments (order_id, method, status, amount, transaction_id)
		VALUES ($1, $2, $3, $4, $5)`

	insertCheckoutAddressSQL = `INSERT INTO shipping_addresses
		(id, user_id, recipient_name, line1, line2, city, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	orderColumns = `o.id, o.order_number, o.user_id, o.status, o.subtotal, o.tax_amount,
		o.shipping_cost, o.discount_amount, o.total_amount, o.shipping_address_id,
		o.tracking_number, o.note, o.created_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	getOrderByIDForUserSQL = `SELECT ` + orderColumns + ` FROM orders o
		WHERE o.id = $1 AND o.user_id = $2`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders o
		WHERE o.user_id = $1 ORDER BY o.created_at DESC`

	getOrderItemsSQL = `SELECT product_id, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY product_id`

	getPaymentSQL = `SELECT order_id, method, status, amount, transaction_id
		FROM payments WHERE order_id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, tracking_number = $3 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a checkout result in a single transaction: the optional new
// shipping address, the order row, its items, the payment row, and guarded
// stock decrements. A decrement that matches no row means the product was
// disabled or ran out of stock after the quote; the whole transaction rolls
// back with ProductUnavailableError and nothing is observable.
func (r *OrderRepository) Create(ctx context.Context, params order.CreateParams) error {
	o := params.Order

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if a := params.NewAddress; a != nil {
		if a.IsDefault {
			// Only one default per user; demote siblings inside the same tx.
			if _, err = tx.Exec(ctx, clearDefaultsSQL, a.UserID); err != nil {
				return fmt.Errorf("clearing default addresses: %w", err)
			}
		}
		_, err = tx.Exec(ctx, insertCheckoutAddressSQL,
			a.ID, a.UserID, a.RecipientName, a.Line1, a.Line2,
			a.City, a.PostalCode, a.Country, a.IsDefault,
		)
		if err != nil {
			return fmt.Errorf("inserting checkout address: %w", err)
		}
	}

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.Number, o.UserID, o.Status, o.Subtotal, o.TaxAmount,
		o.ShippingCost, o.DiscountAmount, o.TotalAmount, o.ShippingAddressID,
		o.TrackingNumber, o.Note,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, insertOrderItemSQL, o.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("inserting order item %q: %w", item.ProductID, err)
		}
	}

	p := o.Payment
	_, err = tx.Exec(ctx, insertPaymentSQL, o.ID, p.Method, p.Status, p.Amount, p.TransactionID)
	if err != nil {
		return fmt.Errorf("inserting payment for order %q: %w", o.ID, err)
	}

	var unavailable []string
	for productID, qty := range params.StockDecrements {
		tag, err := tx.Exec(ctx, decrementStockSQL, productID, qty)
		if err != nil {
			return fmt.Errorf("decrementing stock of %q: %w", productID, err)
		}
		if tag.RowsAffected() == 0 {
			unavailable = append(unavailable, productID)
		}
	}
	if len(unavailable) > 0 {
		return &order.ProductUnavailableError{ProductIDs: unavailable}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout transaction: %w", err)
	}
	return nil
}

// GetByID returns an order with items and payment loaded. A non-empty userID
// scopes the lookup to that user; the back office passes "".
func (r *OrderRepository) GetByID(ctx context.Context, userID, id string) (*order.Order, error) {
	var rows pgx.Rows
	var err error
	if userID == "" {
		rows, err = r.pool.Query(ctx, getOrderByIDSQL, id)
	} else {
		rows, err = r.pool.Query(ctx, getOrderByIDForUserSQL, id, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.loadDetails(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first, with items and payments.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %q: %w", userID, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %q: %w", userID, err)
	}

	for i := range orders {
		if err := r.loadDetails(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus records a fulfillment move. Transition legality is checked by
// the service; the repository just writes.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, trackingNumber string) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status, trackingNumber)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) loadDetails(ctx context.Context, o *order.Order) error {
	rows, err := r.pool.Query(ctx, getOrderItemsSQL, o.ID)
	if err != nil {
		return fmt.Errorf("getting items of order %q: %w", o.ID, err)
	}
	o.Items, err = pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return fmt.Errorf("getting items of order %q: %w", o.ID, err)
	}

	err = r.pool.QueryRow(ctx, getPaymentSQL, o.ID).Scan(
		&o.Payment.OrderID, &o.Payment.Method, &o.Payment.Status,
		&o.Payment.Amount, &o.Payment.TransactionID,
	)
	if err != nil {
		return fmt.Errorf("getting payment of order %q: %w", o.ID, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.Status, &o.Subtotal, &o.TaxAmount,
		&o.ShippingCost, &o.DiscountAmount, &o.TotalAmount, &o.ShippingAddressID,
		&o.TrackingNumber, &o.Note, &o.CreatedAt,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice)
	return it, err
}
