// Package cart holds the visitor shopping cart and the checkout quote.
//
// A cart is a small value reconstructed per request from a pluggable Store,
// never ambient session state: mutations return a new line slice and the
// caller decides when to persist. Quoting is a pure function of current
// product data and requested quantities.
package cart

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidQuantity is returned when a line quantity is below 1.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrNotFound is returned when no cart exists for a token.
	ErrNotFound = errors.New("cart not found")
)

// Line is a (product, quantity) pairing within the cart.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the per-visitor line list, addressed by an opaque token.
type Cart struct {
	Token string
	Lines []Line
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Upsert returns a copy of the cart with the product set to the given
// quantity, merging into an existing line when present. Product IDs are
// unique within a cart.
func (c Cart) Upsert(productID string, quantity int) (Cart, error) {
	if quantity < 1 {
		return c, ErrInvalidQuantity
	}

	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)

	for i, l := range lines {
		if l.ProductID == productID {
			lines[i].Quantity = quantity
			return Cart{Token: c.Token, Lines: lines}, nil
		}
	}
	lines = append(lines, Line{ProductID: productID, Quantity: quantity})
	return Cart{Token: c.Token, Lines: lines}, nil
}

// Remove returns a copy of the cart without the given product. Removing a
// product that is not in the cart is a no-op.
func (c Cart) Remove(productID string) Cart {
	lines := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	return Cart{Token: c.Token, Lines: lines}
}

// Store persists carts by token. Implementations may back onto a cookie,
// server session, or database table; the cart logic does not care.
type Store interface {
	// Load returns the cart for a token, or ErrNotFound.
	Load(ctx context.Context, token string) (Cart, error)
	// Save persists the cart under its token, creating it if needed.
	Save(ctx context.Context, c Cart) error
	// Clear removes the cart for a token. Clearing an absent cart is a no-op.
	Clear(ctx context.Context, token string) error
}
