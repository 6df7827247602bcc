package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/category"
	"github.com/corvel/storefront/internal/domain/product"
)

type productView struct {
	ID            string  `json:"id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	CategoryID    string  `json:"category_id,omitempty"`
	InStock       bool    `json:"in_stock"`
}

func toProductView(p product.Product) productView {
	return productView{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		InStock:       p.StockQuantity > 0,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sort, err := product.ParseSortKey(q.Get("sort"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := product.ListFilter{
		CategoryID: q.Get("category"),
		Search:     q.Get("q"),
		ActiveOnly: true,
		Sort:       sort,
		Descending: q.Get("dir") == "desc",
	}
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	products, err := h.products.List(r.Context(), f)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = toProductView(p)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductView(*p))
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toCategoryView(c category.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Description: c.Description}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	h.respondCategories(w, r, true)
}

func (h *Handler) adminListCategories(w http.ResponseWriter, r *http.Request) {
	h.respondCategories(w, r, false)
}

func (h *Handler) respondCategories(w http.ResponseWriter, r *http.Request, visibleOnly bool) {
	categories, err := h.categories.List(r.Context(), visibleOnly)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	views := make([]categoryView, len(categories))
	for i, c := range categories {
		views[i] = toCategoryView(c)
	}
	respondJSON(w, http.StatusOK, views)
}

type productReq struct {
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stock_quantity"`
	CategoryID    string `json:"category_id"`
}

func (req productReq) toDomain() (product.Product, error) {
	price, err := decimalFromString(req.Price)
	if err != nil {
		return product.Product{}, err
	}
	return product.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
	}, nil
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := req.toDomain()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price")
		return
	}

	created, err := h.catalog.Create(r.Context(), p)
	if err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toProductView(*created))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := req.toDomain()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid price")
		return
	}
	p.ID = r.PathValue("id")

	updated, err := h.catalog.Update(r.Context(), p)
	if err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductView(*updated))
}

func (h *Handler) disableProduct(w http.ResponseWriter, r *http.Request) {
	h.setProductDisabled(w, r, true)
}

func (h *Handler) enableProduct(w http.ResponseWriter, r *http.Request) {
	h.setProductDisabled(w, r, false)
}

func (h *Handler) setProductDisabled(w http.ResponseWriter, r *http.Request, disabled bool) {
	if err := h.catalog.SetDisabled(r.Context(), r.PathValue("id"), disabled); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restockProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.catalog.Restock(r.Context(), r.PathValue("id"), req.Delta); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mapCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, product.ErrMissingFields), errors.Is(err, product.ErrNegativePrice):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		if mapLifecycleError(w, err) {
			return
		}
		respondInternal(w, r, err)
	}
}

type categoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.categories.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.mapCategoryError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCategoryView(*c))
}

func (h *Handler) renameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.categories.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		h.mapCategoryError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryView(*c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapCategoryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mapCategoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, category.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, category.ErrNameTaken), errors.Is(err, category.ErrHasProducts):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, category.ErrEmptyName):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		if mapLifecycleError(w, err) {
			return
		}
		respondInternal(w, r, err)
	}
}
