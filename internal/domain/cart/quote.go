package cart

import (
	"github.com/shopspring/decimal"

	"github.com/corvel/storefront/internal/domain/product"
)

var (
	freeShippingFrom = decimal.NewFromInt(50)
	flatShipping     = decimal.RequireFromString("9.99")
	taxRate          = decimal.RequireFromString("0.08")
)

// ResolvedLine pairs a cart line with the product it resolved to. UnitPrice
// is captured here so order creation can snapshot it.
type ResolvedLine struct {
	Product  product.Product
	Quantity int
}

// Totals holds the financial breakdown of a quoted cart, carried at two
// decimal places.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Quote is the checkout total for the sellable lines of a cart, plus the
// lines that could not be priced against current product data.
type Quote struct {
	Totals Totals
	Lines  []ResolvedLine
	// Unavailable lists lines whose product is missing, inactive, or
	// understocked. They are excluded from the totals; callers must surface
	// them rather than silently charging stale data.
	Unavailable []Line
}

// ComputeQuote prices the cart lines against the given products. It is a
// pure function: no rounding happens per line, only on the final figures, so
// rounding error cannot compound across line items.
func ComputeQuote(lines []Line, products map[string]product.Product) Quote {
	q := Quote{}
	subtotal := decimal.Zero

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok || !p.Available(l.Quantity) {
			q.Unavailable = append(q.Unavailable, l)
			continue
		}
		q.Lines = append(q.Lines, ResolvedLine{Product: p, Quantity: l.Quantity})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	if len(q.Lines) == 0 {
		q.Totals = Totals{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Tax:      decimal.Zero,
			Total:    decimal.Zero,
		}
		return q
	}

	subtotal = subtotal.Round(2)
	shipping := ShippingCost(subtotal)
	tax := subtotal.Mul(taxRate).Round(2)

	q.Totals = Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
	return q
}

// ShippingCost returns the flat shipping fee, waived once the subtotal
// reaches the free-shipping threshold.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingFrom) {
		return decimal.Zero
	}
	return flatShipping
}
