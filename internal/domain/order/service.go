package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corvel/storefront/internal/domain/address"
	"github.com/corvel/storefront/internal/domain/cart"
	"github.com/corvel/storefront/internal/domain/product"
)

// CheckoutRequest holds the input for turning a cart into an order. Exactly
// one of AddressID and NewAddress must be set.
type CheckoutRequest struct {
	UserID     string
	Cart       cart.Cart
	AddressID  string
	NewAddress *address.Address
	Method     PaymentMethod
	Note       string
}

// Service turns carts into persisted orders and drives fulfillment.
type Service struct {
	products  product.Repository
	addresses address.Repository
	orders    Repository
	carts     cart.Store
	now       func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	products product.Repository,
	addresses address.Repository,
	orders Repository,
	carts cart.Store,
) *Service {
	return &Service{
		products:  products,
		addresses: addresses,
		orders:    orders,
		carts:     carts,
		now:       time.Now,
	}
}

// Checkout materializes the cart into an Order, OrderItems, and a pending
// Payment, all in one transaction. Availability is re-validated here rather
// than trusted from cart-add time, closing the race between "added to cart"
// and "checkout". The cart is cleared only after the transaction commits; on
// any failure it is left intact so the shopper can retry.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if !validMethod(req.Method) {
		return nil, ErrInvalidPaymentMethod
	}

	addressID, newAddr, err := s.resolveAddress(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(req.Cart.Lines))
	for i, l := range req.Cart.Lines {
		if l.Quantity < 1 {
			return nil, cart.ErrInvalidQuantity
		}
		ids[i] = l.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	quote := cart.ComputeQuote(req.Cart.Lines, byID)
	if len(quote.Unavailable) > 0 {
		unavailable := make([]string, len(quote.Unavailable))
		for i, l := range quote.Unavailable {
			unavailable[i] = l.ProductID
		}
		return nil, &ProductUnavailableError{ProductIDs: unavailable}
	}

	items := make([]Item, len(quote.Lines))
	decrements := make(map[string]int, len(quote.Lines))
	for i, l := range quote.Lines {
		items[i] = Item{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
		}
		decrements[l.Product.ID] = l.Quantity
	}

	now := s.now()
	o := &Order{
		ID:                uuid.New().String(),
		Number:            newOrderNumber(now),
		UserID:            req.UserID,
		Status:            StatusPending,
		Subtotal:          quote.Totals.Subtotal,
		TaxAmount:         quote.Totals.Tax,
		ShippingCost:      quote.Totals.Shipping,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       quote.Totals.Total,
		ShippingAddressID: addressID,
		Note:              req.Note,
		Items:             items,
		CreatedAt:         now,
	}
	o.Payment = Payment{
		OrderID: o.ID,
		Method:  req.Method,
		Status:  PaymentPending,
		Amount:  o.TotalAmount,
	}

	err = s.orders.Create(ctx, CreateParams{
		Order:           o,
		NewAddress:      newAddr,
		StockDecrements: decrements,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// The order is committed; a cart that fails to clear is stale data the
	// shopper can clear themselves, not a failed checkout.
	_ = s.carts.Clear(ctx, req.Cart.Token)

	return o, nil
}

// Get returns an order with items and payment, scoped to the owning user.
func (s *Service) Get(ctx context.Context, userID, id string) (*Order, error) {
	return s.orders.GetByID(ctx, userID, id)
}

// History returns the user's orders, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Advance moves an order to the next fulfillment status. Setting shipped
// records the tracking number alongside.
func (s *Service) Advance(ctx context.Context, id string, to Status, trackingNumber string) error {
	o, err := s.orders.GetByID(ctx, "", id)
	if err != nil {
		return err
	}

	if !allowedTransition(o.Status, to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}

	if to != StatusShipped {
		trackingNumber = o.TrackingNumber
	}
	return s.orders.UpdateStatus(ctx, id, to, trackingNumber)
}

func (s *Service) resolveAddress(ctx context.Context, req CheckoutRequest) (string, *address.Address, error) {
	switch {
	case req.AddressID != "":
		a, err := s.addresses.GetByID(ctx, req.UserID, req.AddressID)
		if err != nil {
			return "", nil, err
		}
		return a.ID, nil, nil
	case req.NewAddress != nil:
		a := *req.NewAddress
		a.ID = uuid.New().String()
		a.UserID = req.UserID
		if !a.IsDefault {
			// A user's first address is always the default.
			existing, err := s.addresses.ListByUser(ctx, req.UserID)
			if err != nil {
				return "", nil, errors.Wrap(err, "list addresses")
			}
			a.IsDefault = len(existing) == 0
		}
		return a.ID, &a, nil
	default:
		return "", nil, ErrNoShippingAddress
	}
}

func allowedTransition(from, to Status) bool {
	for _, t := range statusTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func validMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCard, PaymentBankTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}

// newOrderNumber builds a human-readable, globally unique order number. The
// date prefix aids support lookups; the uuid-derived suffix guarantees
// uniqueness without a round-trip to the store.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return "ORD-" + now.UTC().Format("20060102") + "-" + suffix
}
