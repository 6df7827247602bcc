package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvel/storefront/internal/domain/lifecycle"
	"github.com/corvel/storefront/internal/domain/product"
)

func catalogProduct(id, price string, stock int) product.Product {
	return product.Product{
		ID:            id,
		SKU:           "sku-" + id,
		Name:          "Product " + id,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Lifecycle:     lifecycle.Active,
	}
}

func catalog(ps ...product.Product) map[string]product.Product {
	m := make(map[string]product.Product, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	return m
}

func TestComputeQuote_BelowFreeShipping(t *testing.T) {
	// 2 x $10.00 + 1 x $5.00 = $25.00 subtotal.
	q := ComputeQuote(
		[]Line{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
		catalog(catalogProduct("p1", "10.00", 10), catalogProduct("p2", "5.00", 10)),
	)

	require.Empty(t, q.Unavailable)
	assert.True(t, decimal.RequireFromString("25.00").Equal(q.Totals.Subtotal))
	assert.True(t, decimal.RequireFromString("9.99").Equal(q.Totals.Shipping))
	assert.True(t, decimal.RequireFromString("2.00").Equal(q.Totals.Tax))
	assert.True(t, decimal.RequireFromString("36.99").Equal(q.Totals.Total))
}

func TestComputeQuote_ExactlyAtThreshold(t *testing.T) {
	q := ComputeQuote(
		[]Line{{ProductID: "p1", Quantity: 1}},
		catalog(catalogProduct("p1", "50.00", 5)),
	)

	assert.True(t, q.Totals.Shipping.IsZero())
	assert.True(t, decimal.RequireFromString("4.00").Equal(q.Totals.Tax))
	assert.True(t, decimal.RequireFromString("54.00").Equal(q.Totals.Total))
}

func TestComputeQuote_TotalIsExactSum(t *testing.T) {
	q := ComputeQuote(
		[]Line{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 7}},
		catalog(catalogProduct("p1", "1.99", 10), catalogProduct("p2", "0.33", 10)),
	)

	sum := q.Totals.Subtotal.Add(q.Totals.Shipping).Add(q.Totals.Tax)
	assert.True(t, sum.Equal(q.Totals.Total))
}

func TestComputeQuote_EmptyCart(t *testing.T) {
	q := ComputeQuote(nil, catalog())

	assert.True(t, q.Totals.Subtotal.IsZero())
	assert.True(t, q.Totals.Shipping.IsZero())
	assert.True(t, q.Totals.Tax.IsZero())
	assert.True(t, q.Totals.Total.IsZero())
	assert.Empty(t, q.Lines)
}

func TestComputeQuote_ExcludesUnavailableLines(t *testing.T) {
	inactive := catalogProduct("p2", "100.00", 10)
	inactive.Lifecycle = lifecycle.Disabled
	understocked := catalogProduct("p3", "100.00", 1)

	q := ComputeQuote(
		[]Line{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p3", Quantity: 5},
			{ProductID: "missing", Quantity: 1},
		},
		catalog(catalogProduct("p1", "10.00", 10), inactive, understocked),
	)

	require.Len(t, q.Lines, 1)
	assert.Equal(t, "p1", q.Lines[0].Product.ID)
	require.Len(t, q.Unavailable, 3)
	assert.True(t, decimal.RequireFromString("10.00").Equal(q.Totals.Subtotal))
}

func TestShippingCost(t *testing.T) {
	tests := []struct {
		subtotal string
		want     string
	}{
		{subtotal: "0", want: "9.99"},
		{subtotal: "49.99", want: "9.99"},
		{subtotal: "50.00", want: "0"},
		{subtotal: "120.50", want: "0"},
	}

	for _, tt := range tests {
		got := ShippingCost(decimal.RequireFromString(tt.subtotal))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
			"subtotal %s: expected %s, got %s", tt.subtotal, tt.want, got)
	}
}

func TestCart_Upsert(t *testing.T) {
	c := Cart{Token: "t"}

	c, err := c.Upsert("p1", 2)
	require.NoError(t, err)
	c, err = c.Upsert("p2", 1)
	require.NoError(t, err)

	// Same product merges, not duplicates.
	c, err = c.Upsert("p1", 5)
	require.NoError(t, err)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, 5, c.Lines[0].Quantity)
}

func TestCart_UpsertRejectsZeroQuantity(t *testing.T) {
	c := Cart{}
	_, err := c.Upsert("p1", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCart_UpsertDoesNotMutateReceiver(t *testing.T) {
	orig := Cart{Lines: []Line{{ProductID: "p1", Quantity: 1}}}

	_, err := orig.Upsert("p1", 9)
	require.NoError(t, err)
	assert.Equal(t, 1, orig.Lines[0].Quantity)
}

func TestCart_Remove(t *testing.T) {
	c := Cart{Lines: []Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 2},
	}}

	c = c.Remove("p1")
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p2", c.Lines[0].ProductID)

	// Removing an absent product is a no-op.
	c = c.Remove("nope")
	assert.Len(t, c.Lines, 1)
}
