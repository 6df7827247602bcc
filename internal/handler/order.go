package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/address"
	"github.com/corvel/storefront/internal/domain/order"
)

type orderItemView struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type orderView struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Status         string          `json:"status"`
	Subtotal       float64         `json:"subtotal"`
	Tax            float64         `json:"tax"`
	Shipping       float64         `json:"shipping"`
	Discount       float64         `json:"discount"`
	Total          float64         `json:"total"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Note           string          `json:"note,omitempty"`
	Items          []orderItemView `json:"items"`
	PaymentMethod  string          `json:"payment_method"`
	PaymentStatus  string          `json:"payment_status"`
	CreatedAt      string          `json:"created_at"`
}

func toOrderView(o order.Order) orderView {
	v := orderView{
		ID:             o.ID,
		Number:         o.Number,
		Status:         string(o.Status),
		Subtotal:       o.Subtotal.InexactFloat64(),
		Tax:            o.TaxAmount.InexactFloat64(),
		Shipping:       o.ShippingCost.InexactFloat64(),
		Discount:       o.DiscountAmount.InexactFloat64(),
		Total:          o.TotalAmount.InexactFloat64(),
		TrackingNumber: o.TrackingNumber,
		Note:           o.Note,
		Items:          make([]orderItemView, len(o.Items)),
		PaymentMethod:  string(o.Payment.Method),
		PaymentStatus:  string(o.Payment.Status),
		CreatedAt:      o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for i, it := range o.Items {
		v.Items[i] = orderItemView{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
		}
	}
	return v
}

type checkoutReq struct {
	AddressID  string      `json:"address_id"`
	NewAddress *addressReq `json:"new_address"`
	Method     string      `json:"payment_method"`
	Note       string      `json:"note"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	var req checkoutReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token := cartToken(w, r)
	view, err := h.carts.Get(r.Context(), token)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	domainReq := order.CheckoutRequest{
		UserID:    uid,
		Cart:      view.Cart,
		AddressID: req.AddressID,
		Method:    order.PaymentMethod(req.Method),
		Note:      req.Note,
	}
	if req.NewAddress != nil {
		a := req.NewAddress.toDomain()
		a.UserID = uid
		domainReq.NewAddress = &a
	}

	o, err := h.orders.Checkout(r.Context(), domainReq)
	if err != nil {
		h.mapCheckoutError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderView(*o))
}

func (h *Handler) mapCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var unavail *order.ProductUnavailableError
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, order.ErrNoShippingAddress):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, address.ErrNotFound), errors.Is(err, address.ErrIncomplete):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unavail):
		respondError(w, http.StatusUnprocessableEntity, unavail.Error())
	default:
		respondInternal(w, r, err)
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	orders, err := h.orders.History(r.Context(), uid)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	views := make([]orderView, len(orders))
	for i, o := range orders {
		views[i] = toOrderView(o)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}
	h.respondOrder(w, r, uid)
}

func (h *Handler) adminGetOrder(w http.ResponseWriter, r *http.Request) {
	h.respondOrder(w, r, "")
}

func (h *Handler) respondOrder(w http.ResponseWriter, r *http.Request, uid string) {
	o, err := h.orders.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderView(*o))
}

func (h *Handler) advanceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status         string `json:"status"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.orders.Advance(r.Context(), r.PathValue("id"), order.Status(req.Status), req.TrackingNumber)
	if err != nil {
		var it *order.InvalidTransitionError
		switch {
		case errors.Is(err, order.ErrNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &it):
			respondError(w, http.StatusConflict, it.Error())
		default:
			respondInternal(w, r, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
