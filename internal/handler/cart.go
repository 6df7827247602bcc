package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corvel/storefront/internal/domain/cart"
	"github.com/corvel/storefront/internal/domain/product"
)

type cartLineView struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type cartViewResp struct {
	Token       string         `json:"token"`
	Items       []cartLineView `json:"items"`
	Unavailable []string       `json:"unavailable,omitempty"`
	Subtotal    float64        `json:"subtotal"`
	Shipping    float64        `json:"shipping"`
	Tax         float64        `json:"tax"`
	Total       float64        `json:"total"`
}

func toCartView(v cart.View) cartViewResp {
	resp := cartViewResp{
		Token:    v.Cart.Token,
		Items:    make([]cartLineView, len(v.Quote.Lines)),
		Subtotal: v.Quote.Totals.Subtotal.InexactFloat64(),
		Shipping: v.Quote.Totals.Shipping.InexactFloat64(),
		Tax:      v.Quote.Totals.Tax.InexactFloat64(),
		Total:    v.Quote.Totals.Total.InexactFloat64(),
	}
	for i, l := range v.Quote.Lines {
		resp.Items[i] = cartLineView{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price.InexactFloat64(),
			LineTotal: l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).InexactFloat64(),
		}
	}
	for _, l := range v.Quote.Unavailable {
		resp.Unavailable = append(resp.Unavailable, l.ProductID)
	}
	return resp
}

// cartToken returns the visitor's cart token, minting one when absent. The
// token always echoes back so the client can persist it.
func cartToken(w http.ResponseWriter, r *http.Request) string {
	token := r.Header.Get("X-Cart-Token")
	if token == "" {
		token = uuid.New().String()
	}
	w.Header().Set("X-Cart-Token", token)
	return token
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	token := cartToken(w, r)
	v, err := h.carts.Get(r.Context(), token)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartView(v))
}

func (h *Handler) putCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token := cartToken(w, r)
	v, err := h.carts.SetLine(r.Context(), token, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, product.ErrNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			respondInternal(w, r, err)
		}
		return
	}
	respondJSON(w, http.StatusOK, toCartView(v))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	token := cartToken(w, r)
	v, err := h.carts.RemoveLine(r.Context(), token, r.PathValue("productID"))
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartView(v))
}
