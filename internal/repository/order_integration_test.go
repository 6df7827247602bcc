//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvel/storefront/internal/domain/address"
	"github.com/corvel/storefront/internal/domain/order"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, 'x')`,
		id, "u-"+id, id+"@example.com")
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, stock int) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, sku, name, price, stock_quantity) VALUES ($1, $2, 'Pour Over Kit', 10.00, $3)`,
		id, "SKU-"+id, stock)
	require.NoError(t, err)
	return id
}

func checkoutParams(userID, productID string, qty int) order.CreateParams {
	addr := &address.Address{
		ID:            uuid.New().String(),
		UserID:        userID,
		RecipientName: "Jo Bloggs",
		Line1:         "1 High Street",
		City:          "Norwich",
		PostalCode:    "NR1 1AA",
		Country:       "GB",
	}
	ten := decimal.RequireFromString("10.00")
	o := &order.Order{
		ID:                uuid.New().String(),
		Number:            "ORD-TEST-" + uuid.New().String()[:8],
		UserID:            userID,
		Status:            order.StatusPending,
		Subtotal:          ten.Mul(decimal.NewFromInt(int64(qty))),
		TaxAmount:         decimal.Zero,
		ShippingCost:      decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       ten.Mul(decimal.NewFromInt(int64(qty))),
		ShippingAddressID: addr.ID,
		Items: []order.Item{
			{ProductID: productID, Quantity: qty, UnitPrice: ten},
		},
		Payment: order.Payment{
			Method: order.PaymentCard,
			Status: order.PaymentPending,
			Amount: ten.Mul(decimal.NewFromInt(int64(qty))),
		},
	}
	return order.CreateParams{
		Order:           o,
		NewAddress:      addr,
		StockDecrements: map[string]int{productID: qty},
	}
}

func TestOrderCreate_RollsBackWhenUnderstocked(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	userID := seedUser(t, pool)
	productID := seedProduct(t, pool, 1)

	params := checkoutParams(userID, productID, 2)
	err := repo.Create(ctx, params)

	var unavailErr *order.ProductUnavailableError
	require.ErrorAs(t, err, &unavailErr)
	assert.Equal(t, []string{productID}, unavailErr.ProductIDs)

	// Nothing from the transaction may be observable.
	var orders, addresses, stock int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&orders))
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM shipping_addresses WHERE user_id = $1`, userID).Scan(&addresses))
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock))
	assert.Zero(t, orders)
	assert.Zero(t, addresses)
	assert.Equal(t, 1, stock)
}

func TestOrderCreate_DecrementsStockOnCommit(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	userID := seedUser(t, pool)
	productID := seedProduct(t, pool, 5)

	params := checkoutParams(userID, productID, 2)
	require.NoError(t, repo.Create(ctx, params))

	var stock int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock))
	assert.Equal(t, 3, stock)

	got, err := repo.GetByID(ctx, userID, params.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestOrderCreate_NewDefaultAddressDemotesSiblings(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	userID := seedUser(t, pool)
	productID := seedProduct(t, pool, 5)

	oldAddrID := uuid.New().String()
	_, err := pool.Exec(ctx,
		`INSERT INTO shipping_addresses (id, user_id, recipient_name, line1, city, postal_code, country, is_default)
		 VALUES ($1, $2, 'Jo Bloggs', '2 Low Street', 'Norwich', 'NR1 1AB', 'GB', TRUE)`,
		oldAddrID, userID)
	require.NoError(t, err)

	params := checkoutParams(userID, productID, 1)
	params.NewAddress.IsDefault = true
	require.NoError(t, repo.Create(ctx, params))

	var defaults int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM shipping_addresses WHERE user_id = $1 AND is_default`, userID).Scan(&defaults))
	assert.Equal(t, 1, defaults, "exactly one default per user")

	var defaultID string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT id FROM shipping_addresses WHERE user_id = $1 AND is_default`, userID).Scan(&defaultID))
	assert.Equal(t, params.NewAddress.ID, defaultID)
}
