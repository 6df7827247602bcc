package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/corvel/storefront/internal/domain/address"
)

// Status enumerates the fulfillment states of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusTransitions lists the allowed fulfillment moves. Cancellation is only
// possible before the order ships.
var statusTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// PaymentMethod is an opaque tag chosen by the caller. It is never derived
// from card data; no card digits enter this module.
type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// PaymentStatus enumerates payment lifecycle states.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Sentinel errors for checkout and fulfillment.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNoShippingAddress    = errors.New("shipping address required")
	ErrNotFound             = errors.New("order not found")
)

// ProductUnavailableError indicates one or more cart lines could not be
// fulfilled at commit time: the product vanished, was disabled, or lacks
// stock. The cart is left untouched so the shopper can adjust and retry.
type ProductUnavailableError struct {
	ProductIDs []string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("products unavailable: %v", e.ProductIDs)
}

// InvalidTransitionError indicates a fulfillment move that the status table
// does not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order status transition %s -> %s not allowed", e.From, e.To)
}

// Item is a line of an order, snapshotting the unit price at purchase time.
type Item struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Payment records the 1:1 payment attached to an order.
type Payment struct {
	OrderID       string
	Method        PaymentMethod
	Status        PaymentStatus
	Amount        decimal.Decimal
	TransactionID string
}

// Order is a persisted checkout result. Its financial fields are immutable
// once created; only Status and TrackingNumber change afterwards.
type Order struct {
	ID                string
	Number            string
	UserID            string
	Status            Status
	Subtotal          decimal.Decimal
	TaxAmount         decimal.Decimal
	ShippingCost      decimal.Decimal
	DiscountAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	ShippingAddressID string
	TrackingNumber    string
	Note              string
	Items             []Item
	Payment           Payment
	CreatedAt         time.Time
}

// CreateParams bundles everything the repository must persist atomically at
// checkout: the order with its items and payment, plus a brand-new shipping
// address when the shopper entered one instead of picking an existing row.
type CreateParams struct {
	Order      *Order
	NewAddress *address.Address
	// StockDecrements maps product id to the quantity to subtract, guarded so
	// the write fails with ProductUnavailableError if stock ran out between
	// the quote and the commit.
	StockDecrements map[string]int
}

// Repository defines persistence operations for orders. Create must apply all
// writes in one transaction: a partially materialized order must never be
// observable.
type Repository interface {
	Create(ctx context.Context, params CreateParams) error
	// GetByID returns the order with items and payment eagerly loaded, scoped
	// to the owning user; userID == "" skips the ownership check (back office).
	GetByID(ctx context.Context, userID, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, trackingNumber string) error
}
