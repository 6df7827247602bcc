package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvel/storefront/internal/domain/address"
	"github.com/corvel/storefront/internal/domain/cart"
	"github.com/corvel/storefront/internal/domain/lifecycle"
	"github.com/corvel/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]product.Product
	err  error
}

func (m *mockProductRepo) List(_ context.Context, _ product.ListFilter) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) SetLifecycle(_ context.Context, _ string, _ lifecycle.State) error {
	return nil
}
func (m *mockProductRepo) AdjustStock(_ context.Context, _ string, _ int) error { return nil }

type mockAddressRepo struct {
	byID map[string]*address.Address
}

func (m *mockAddressRepo) ListByUser(_ context.Context, userID string) ([]address.Address, error) {
	var out []address.Address
	for _, a := range m.byID {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAddressRepo) GetByID(_ context.Context, userID, id string) (*address.Address, error) {
	a, ok := m.byID[id]
	if !ok || a.UserID != userID {
		return nil, address.ErrNotFound
	}
	return a, nil
}

func (m *mockAddressRepo) Create(_ context.Context, _ *address.Address) error       { return nil }
func (m *mockAddressRepo) Update(_ context.Context, _ *address.Address) error       { return nil }
func (m *mockAddressRepo) Delete(_ context.Context, _, _ string) error              { return nil }
func (m *mockAddressRepo) ClearDefaults(_ context.Context, _ string) error          { return nil }
func (m *mockAddressRepo) SetDefault(_ context.Context, _, _ string) error          { return nil }
func (m *mockAddressRepo) MostRecent(_ context.Context, _, _ string) (*address.Address, error) {
	return nil, address.ErrNotFound
}

type mockOrderRepo struct {
	lastParams CreateParams
	created    bool
	createErr  error
	byID       map[string]*Order
}

func (m *mockOrderRepo) Create(_ context.Context, params CreateParams) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastParams = params
	m.created = true
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, userID, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok || (userID != "" && o.UserID != userID) {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status, tracking string) error {
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.TrackingNumber = tracking
	return nil
}

type mockCartStore struct {
	cleared  []string
	clearErr error
}

func (m *mockCartStore) Load(_ context.Context, _ string) (cart.Cart, error) {
	return cart.Cart{}, cart.ErrNotFound
}

func (m *mockCartStore) Save(_ context.Context, _ cart.Cart) error { return nil }

func (m *mockCartStore) Clear(_ context.Context, token string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, token)
	return nil
}

// --- Helpers ---

func activeProduct(id, price string, stock int) product.Product {
	return product.Product{
		ID:            id,
		Name:          "Product " + id,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Lifecycle:     lifecycle.Active,
	}
}

type fixture struct {
	svc       *Service
	products  *mockProductRepo
	addresses *mockAddressRepo
	orders    *mockOrderRepo
	carts     *mockCartStore
}

func newFixture(products ...product.Product) *fixture {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	f := &fixture{
		products: &mockProductRepo{byID: byID},
		addresses: &mockAddressRepo{byID: map[string]*address.Address{
			"addr1": {ID: "addr1", UserID: "u1", IsDefault: true},
		}},
		orders: &mockOrderRepo{byID: make(map[string]*Order)},
		carts:  &mockCartStore{},
	}
	f.svc = NewService(f.products, f.addresses, f.orders, f.carts)
	return f
}

func checkoutReq(lines ...cart.Line) CheckoutRequest {
	return CheckoutRequest{
		UserID:    "u1",
		Cart:      cart.Cart{Token: "tok", Lines: lines},
		AddressID: "addr1",
		Method:    PaymentCard,
	}
}

// --- Tests ---

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Checkout(context.Background(), checkoutReq())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.False(t, f.orders.created)
}

func TestCheckout_InvalidPaymentMethod(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))

	req := checkoutReq(cart.Line{ProductID: "p1", Quantity: 1})
	req.Method = PaymentMethod("first-card-digit")
	_, err := f.svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestCheckout_NoAddress(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))

	req := checkoutReq(cart.Line{ProductID: "p1", Quantity: 1})
	req.AddressID = ""
	_, err := f.svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrNoShippingAddress)
}

func TestCheckout_ForeignAddressIsNotFound(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))
	f.addresses.byID["addr2"] = &address.Address{ID: "addr2", UserID: "u2"}

	req := checkoutReq(cart.Line{ProductID: "p1", Quantity: 1})
	req.AddressID = "addr2"
	_, err := f.svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, address.ErrNotFound)
	assert.False(t, f.orders.created)
}

func TestCheckout_Totals(t *testing.T) {
	f := newFixture(
		activeProduct("p1", "10.00", 10),
		activeProduct("p2", "5.00", 10),
	)

	o, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 2},
		cart.Line{ProductID: "p2", Quantity: 1},
	))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("25.00").Equal(o.Subtotal))
	assert.True(t, decimal.RequireFromString("9.99").Equal(o.ShippingCost))
	assert.True(t, decimal.RequireFromString("2.00").Equal(o.TaxAmount))
	assert.True(t, decimal.RequireFromString("36.99").Equal(o.TotalAmount))

	// totalAmount == subTotal + shippingCost + taxAmount - discountAmount
	sum := o.Subtotal.Add(o.ShippingCost).Add(o.TaxAmount).Sub(o.DiscountAmount)
	assert.True(t, sum.Equal(o.TotalAmount))
}

func TestCheckout_SnapshotsUnitPrices(t *testing.T) {
	f := newFixture(activeProduct("p1", "19.99", 10))

	o, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 3},
	))
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	assert.True(t, decimal.RequireFromString("19.99").Equal(o.Items[0].UnitPrice))
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, map[string]int{"p1": 3}, f.orders.lastParams.StockDecrements)
}

func TestCheckout_PendingPaymentMatchesTotal(t *testing.T) {
	f := newFixture(activeProduct("p1", "60.00", 5))

	o, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, PaymentPending, o.Payment.Status)
	assert.Equal(t, PaymentCard, o.Payment.Method)
	assert.True(t, o.Payment.Amount.Equal(o.TotalAmount))
}

func TestCheckout_UnavailableProduct(t *testing.T) {
	disabled := activeProduct("p2", "5.00", 10)
	disabled.Lifecycle = lifecycle.Disabled
	f := newFixture(activeProduct("p1", "10.00", 10), disabled)

	_, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 1},
		cart.Line{ProductID: "p2", Quantity: 1},
	))

	var unavailErr *ProductUnavailableError
	require.ErrorAs(t, err, &unavailErr)
	assert.Equal(t, []string{"p2"}, unavailErr.ProductIDs)
	assert.False(t, f.orders.created)
	assert.Empty(t, f.carts.cleared, "cart must stay intact on failure")
}

func TestCheckout_Understocked(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 2))

	_, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 3},
	))

	var unavailErr *ProductUnavailableError
	require.ErrorAs(t, err, &unavailErr)
}

func TestCheckout_ClearsCartOnlyAfterCommit(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))

	_, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"tok"}, f.carts.cleared)
}

func TestCheckout_RepoFailureLeavesCart(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))
	f.orders.createErr = errors.New("tx aborted")

	_, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 1},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	assert.Empty(t, f.carts.cleared)
}

func TestCheckout_NewAddressFlowsIntoTransaction(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))

	req := checkoutReq(cart.Line{ProductID: "p1", Quantity: 1})
	req.AddressID = ""
	req.NewAddress = &address.Address{
		RecipientName: "Jo Bloggs",
		Line1:         "1 High Street",
		City:          "Norwich",
		PostalCode:    "NR1 1AA",
		Country:       "GB",
	}

	o, err := f.svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, f.orders.lastParams.NewAddress)
	assert.Equal(t, "u1", f.orders.lastParams.NewAddress.UserID)
	assert.Equal(t, f.orders.lastParams.NewAddress.ID, o.ShippingAddressID)
}

func TestCheckout_FirstAddressBecomesDefault(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))
	f.addresses.byID = map[string]*address.Address{}

	req := checkoutReq(cart.Line{ProductID: "p1", Quantity: 1})
	req.AddressID = ""
	req.NewAddress = &address.Address{
		RecipientName: "Jo Bloggs",
		Line1:         "1 High Street",
		City:          "Norwich",
		PostalCode:    "NR1 1AA",
		Country:       "GB",
	}

	_, err := f.svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, f.orders.lastParams.NewAddress)
	assert.True(t, f.orders.lastParams.NewAddress.IsDefault,
		"a user's first address must become the default")
}

func TestCheckout_LaterAddressKeepsExistingDefault(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))

	req := checkoutReq(cart.Line{ProductID: "p1", Quantity: 1})
	req.AddressID = ""
	req.NewAddress = &address.Address{
		RecipientName: "Jo Bloggs",
		Line1:         "2 Low Street",
		City:          "Norwich",
		PostalCode:    "NR1 1AB",
		Country:       "GB",
	}

	_, err := f.svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, f.orders.lastParams.NewAddress)
	assert.False(t, f.orders.lastParams.NewAddress.IsDefault)
}

func TestCheckout_OrderNumberShape(t *testing.T) {
	f := newFixture(activeProduct("p1", "10.00", 5))

	o, err := f.svc.Checkout(context.Background(), checkoutReq(
		cart.Line{ProductID: "p1", Quantity: 1},
	))
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, o.Number)
}

func TestAdvance_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "pending to processing", from: StatusPending, to: StatusProcessing},
		{name: "processing to shipped", from: StatusProcessing, to: StatusShipped},
		{name: "shipped to delivered", from: StatusShipped, to: StatusDelivered},
		{name: "pending to cancelled", from: StatusPending, to: StatusCancelled},
		{name: "processing to cancelled", from: StatusProcessing, to: StatusCancelled},
		{name: "shipped cannot cancel", from: StatusShipped, to: StatusCancelled, wantErr: true},
		{name: "delivered is terminal", from: StatusDelivered, to: StatusProcessing, wantErr: true},
		{name: "no skipping to delivered", from: StatusPending, to: StatusDelivered, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.orders.byID["o1"] = &Order{ID: "o1", UserID: "u1", Status: tt.from}

			err := f.svc.Advance(context.Background(), "o1", tt.to, "")
			if tt.wantErr {
				var trErr *InvalidTransitionError
				require.ErrorAs(t, err, &trErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, f.orders.byID["o1"].Status)
		})
	}
}

func TestAdvance_ShippedRecordsTracking(t *testing.T) {
	f := newFixture()
	f.orders.byID["o1"] = &Order{ID: "o1", Status: StatusProcessing}

	require.NoError(t, f.svc.Advance(context.Background(), "o1", StatusShipped, "TRK123"))
	assert.Equal(t, "TRK123", f.orders.byID["o1"].TrackingNumber)
}

func TestAdvance_NonShippedIgnoresTracking(t *testing.T) {
	f := newFixture()
	f.orders.byID["o1"] = &Order{ID: "o1", Status: StatusPending, TrackingNumber: ""}

	require.NoError(t, f.svc.Advance(context.Background(), "o1", StatusProcessing, "TRK999"))
	assert.Empty(t, f.orders.byID["o1"].TrackingNumber)
}

func TestGet_ScopedByUser(t *testing.T) {
	f := newFixture()
	f.orders.byID["o1"] = &Order{ID: "o1", UserID: "u1"}

	_, err := f.svc.Get(context.Background(), "u2", "o1")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
}
