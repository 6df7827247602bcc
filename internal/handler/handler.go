// Package handler exposes the storefront over a JSON HTTP API.
//
// Handlers stay thin: decode, delegate to a domain service, map domain errors
// to status codes. Shopper identity arrives as the X-User-ID header set by
// the front proxy; back office routes require an X-API-Key instead.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/corvel/storefront/internal/domain/address"
	"github.com/corvel/storefront/internal/domain/auth"
	"github.com/corvel/storefront/internal/domain/blog"
	"github.com/corvel/storefront/internal/domain/cart"
	"github.com/corvel/storefront/internal/domain/category"
	"github.com/corvel/storefront/internal/domain/contact"
	"github.com/corvel/storefront/internal/domain/faq"
	"github.com/corvel/storefront/internal/domain/lifecycle"
	"github.com/corvel/storefront/internal/domain/order"
	"github.com/corvel/storefront/internal/domain/product"
	"github.com/corvel/storefront/internal/domain/slider"
	"github.com/corvel/storefront/internal/domain/user"
)

// Handler carries the domain services behind the HTTP surface.
type Handler struct {
	products   product.Repository
	catalog    *product.Service
	categories *category.Service
	carts      *cart.Service
	orders     *order.Service
	addresses  *address.Service
	posts      *blog.Service
	faqs       *faq.Service
	sliders    *slider.Service
	users      *user.Service
	messages   *contact.Service
	verifier   *auth.Verifier
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	catalog *product.Service,
	categories *category.Service,
	carts *cart.Service,
	orders *order.Service,
	addresses *address.Service,
	posts *blog.Service,
	faqs *faq.Service,
	sliders *slider.Service,
	users *user.Service,
	messages *contact.Service,
	verifier *auth.Verifier,
) *Handler {
	return &Handler{
		products:   products,
		catalog:    catalog,
		categories: categories,
		carts:      carts,
		orders:     orders,
		addresses:  addresses,
		posts:      posts,
		faqs:       faqs,
		sliders:    sliders,
		users:      users,
		messages:   messages,
		verifier:   verifier,
	}
}

// Routes registers every endpoint on the mux. Storefront routes live under
// /api, back office routes under /api/admin.
func (h *Handler) Routes(mux *http.ServeMux) {
	// Storefront.
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/categories", h.listCategories)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("PUT /api/cart/items", h.putCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productID}", h.removeCartItem)

	mux.HandleFunc("POST /api/checkout", h.checkout)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)

	mux.HandleFunc("POST /api/users", h.register)
	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("GET /api/addresses", h.listAddresses)
	mux.HandleFunc("POST /api/addresses", h.addAddress)
	mux.HandleFunc("PUT /api/addresses/{id}", h.updateAddress)
	mux.HandleFunc("DELETE /api/addresses/{id}", h.deleteAddress)
	mux.HandleFunc("POST /api/addresses/{id}/default", h.makeDefaultAddress)

	mux.HandleFunc("GET /api/blog", h.listPosts)
	mux.HandleFunc("GET /api/blog/{slug}", h.readPost)
	mux.HandleFunc("GET /api/faq", h.listFAQ)
	mux.HandleFunc("GET /api/sliders", h.listSliders)
	mux.HandleFunc("POST /api/contact", h.submitContact)

	// Back office.
	admin := h.requireAdmin
	mux.Handle("POST /api/admin/products", admin(h.createProduct))
	mux.Handle("PUT /api/admin/products/{id}", admin(h.updateProduct))
	mux.Handle("POST /api/admin/products/{id}/disable", admin(h.disableProduct))
	mux.Handle("POST /api/admin/products/{id}/enable", admin(h.enableProduct))
	mux.Handle("DELETE /api/admin/products/{id}", admin(h.deleteProduct))
	mux.Handle("POST /api/admin/products/{id}/stock", admin(h.restockProduct))

	mux.Handle("GET /api/admin/categories", admin(h.adminListCategories))
	mux.Handle("POST /api/admin/categories", admin(h.createCategory))
	mux.Handle("PUT /api/admin/categories/{id}", admin(h.renameCategory))
	mux.Handle("DELETE /api/admin/categories/{id}", admin(h.deleteCategory))

	mux.Handle("GET /api/admin/orders/{id}", admin(h.adminGetOrder))
	mux.Handle("POST /api/admin/orders/{id}/status", admin(h.advanceOrder))

	mux.Handle("GET /api/admin/blog", admin(h.adminListPosts))
	mux.Handle("POST /api/admin/blog", admin(h.createPost))
	mux.Handle("PUT /api/admin/blog/{id}", admin(h.updatePost))
	mux.Handle("POST /api/admin/blog/{id}/publish", admin(h.publishPost))
	mux.Handle("DELETE /api/admin/blog/{id}", admin(h.deletePost))

	mux.Handle("POST /api/admin/faq/categories", admin(h.createFAQCategory))
	mux.Handle("POST /api/admin/faq/categories/reorder", admin(h.reorderFAQCategories))
	mux.Handle("POST /api/admin/faq", admin(h.createFAQ))
	mux.Handle("PUT /api/admin/faq/{id}", admin(h.updateFAQ))
	mux.Handle("POST /api/admin/faq/reorder", admin(h.reorderFAQ))
	mux.Handle("DELETE /api/admin/faq/{id}", admin(h.deleteFAQ))

	mux.Handle("GET /api/admin/sliders", admin(h.adminListSliders))
	mux.Handle("POST /api/admin/sliders", admin(h.createSlider))
	mux.Handle("PUT /api/admin/sliders/{id}", admin(h.updateSlider))
	mux.Handle("POST /api/admin/sliders/reorder", admin(h.reorderSliders))
	mux.Handle("DELETE /api/admin/sliders/{id}", admin(h.deleteSlider))

	mux.Handle("GET /api/admin/contact", admin(h.listContact))
	mux.Handle("GET /api/admin/contact/unread", admin(h.unreadContact))
	mux.Handle("GET /api/admin/contact/{id}", admin(h.openContact))
	mux.Handle("DELETE /api/admin/contact/{id}", admin(h.deleteContact))

	mux.Handle("POST /api/admin/users/{id}/disable", admin(h.disableUser))
	mux.Handle("POST /api/admin/users/{id}/enable", admin(h.enableUser))
	mux.Handle("DELETE /api/admin/users/{id}", admin(h.deleteUser))
}

// errorResponse is the JSON error body shared by every endpoint.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondInternal logs the error and hides its detail from the client.
func respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, "internal error")
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decimalFromString parses a money field from its JSON string form.
func decimalFromString(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// mapLifecycleError responds 409 for illegal lifecycle moves and reports
// whether it handled the error.
func mapLifecycleError(w http.ResponseWriter, err error) bool {
	var te *lifecycle.TransitionError
	if errors.As(err, &te) {
		respondError(w, http.StatusConflict, te.Error())
		return true
	}
	return false
}

// userID returns the shopper identity set by the front proxy, or "".
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// requireUser responds 401 and returns "" when no identity header is present.
func requireUser(w http.ResponseWriter, r *http.Request) string {
	id := userID(r)
	if id == "" {
		respondError(w, http.StatusUnauthorized, "authentication required")
	}
	return id
}
