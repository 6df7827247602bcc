package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/product"
)

// Service ties the cart store to current product data: every read comes back
// freshly quoted, so stale prices never reach the shopper.
type Service struct {
	store    Store
	products product.Repository
}

// NewService creates a cart Service.
func NewService(store Store, products product.Repository) *Service {
	return &Service{store: store, products: products}
}

// View is a cart with its current quote.
type View struct {
	Cart  Cart
	Quote Quote
}

// Get returns the cart for a token, quoted against current products. A token
// with no stored cart yields an empty view rather than an error.
func (s *Service) Get(ctx context.Context, token string) (View, error) {
	c, err := s.store.Load(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c = Cart{Token: token}
		} else {
			return View{}, errors.Wrap(err, "load cart")
		}
	}
	return s.view(ctx, c)
}

// SetLine sets a product's quantity in the cart, creating the cart if needed.
func (s *Service) SetLine(ctx context.Context, token, productID string, quantity int) (View, error) {
	c, err := s.store.Load(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return View{}, errors.Wrap(err, "load cart")
		}
		c = Cart{Token: token}
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return View{}, err
	}

	c, err = c.Upsert(productID, quantity)
	if err != nil {
		return View{}, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return View{}, errors.Wrap(err, "save cart")
	}
	return s.view(ctx, c)
}

// RemoveLine drops a product from the cart. Removing from an absent cart is
// a no-op returning an empty view.
func (s *Service) RemoveLine(ctx context.Context, token, productID string) (View, error) {
	c, err := s.store.Load(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return View{Cart: Cart{Token: token}}, nil
		}
		return View{}, errors.Wrap(err, "load cart")
	}

	c = c.Remove(productID)
	if err := s.store.Save(ctx, c); err != nil {
		return View{}, errors.Wrap(err, "save cart")
	}
	return s.view(ctx, c)
}

func (s *Service) view(ctx context.Context, c Cart) (View, error) {
	if c.IsEmpty() {
		return View{Cart: c, Quote: ComputeQuote(nil, nil)}, nil
	}

	ids := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return View{}, errors.Wrap(err, "resolve products")
	}

	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return View{Cart: c, Quote: ComputeQuote(c.Lines, byID)}, nil
}
