package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/contact"
	"github.com/corvel/storefront/internal/domain/faq"
	"github.com/corvel/storefront/internal/domain/slider"
)

type faqView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Order    int    `json:"order"`
}

type faqCategoryView struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Order int       `json:"order"`
	FAQs  []faqView `json:"faqs"`
}

// listFAQ returns visible categories with their visible FAQs, both in
// display order.
func (h *Handler) listFAQ(w http.ResponseWriter, r *http.Request) {
	categories, err := h.faqs.Categories(r.Context(), true)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	views := make([]faqCategoryView, len(categories))
	for i, c := range categories {
		faqs, err := h.faqs.ListByCategory(r.Context(), c.ID, true)
		if err != nil {
			respondInternal(w, r, err)
			return
		}
		cv := faqCategoryView{ID: c.ID, Name: c.Name, Order: c.DisplayOrder, FAQs: make([]faqView, len(faqs))}
		for j, f := range faqs {
			cv.FAQs[j] = faqView{ID: f.ID, Question: f.Question, Answer: f.Answer, Order: f.DisplayOrder}
		}
		views[i] = cv
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) createFAQCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.faqs.CreateCategory(r.Context(), req.Name, req.DisplayOrder)
	if err != nil {
		h.mapFAQError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, faqCategoryView{ID: c.ID, Name: c.Name, Order: c.DisplayOrder, FAQs: []faqView{}})
}

func (h *Handler) createFAQ(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID   string `json:"category_id"`
		Question     string `json:"question"`
		Answer       string `json:"answer"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := h.faqs.Create(r.Context(), req.CategoryID, req.Question, req.Answer, req.DisplayOrder)
	if err != nil {
		h.mapFAQError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, faqView{ID: f.ID, Question: f.Question, Answer: f.Answer, Order: f.DisplayOrder})
}

func (h *Handler) updateFAQ(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID   string `json:"category_id"`
		Question     string `json:"question"`
		Answer       string `json:"answer"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := h.faqs.Edit(r.Context(), r.PathValue("id"), req.CategoryID, req.Question, req.Answer, req.DisplayOrder)
	if err != nil {
		h.mapFAQError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, faqView{ID: f.ID, Question: f.Question, Answer: f.Answer, Order: f.DisplayOrder})
}

type reorderReq struct {
	Orders map[string]int `json:"orders"`
}

func (h *Handler) reorderFAQ(w http.ResponseWriter, r *http.Request) {
	h.applyReorder(w, r, h.faqs.Reorder)
}

func (h *Handler) reorderFAQCategories(w http.ResponseWriter, r *http.Request) {
	h.applyReorder(w, r, h.faqs.ReorderCategories)
}

func (h *Handler) reorderSliders(w http.ResponseWriter, r *http.Request) {
	h.applyReorder(w, r, h.sliders.Reorder)
}

func (h *Handler) applyReorder(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, orders map[string]int) error) {
	var req reorderReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := op(r.Context(), req.Orders); err != nil {
		switch {
		case errors.Is(err, faq.ErrInvalidOrder), errors.Is(err, slider.ErrInvalidOrder):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, faq.ErrNotFound), errors.Is(err, slider.ErrNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			respondInternal(w, r, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteFAQ(w http.ResponseWriter, r *http.Request) {
	if err := h.faqs.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapFAQError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mapFAQError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, faq.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, faq.ErrNameTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, faq.ErrEmptyQuestion), errors.Is(err, faq.ErrEmptyName), errors.Is(err, faq.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		if mapLifecycleError(w, err) {
			return
		}
		respondInternal(w, r, err)
	}
}

type sliderView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url,omitempty"`
	Order    int    `json:"order"`
}

func toSliderView(s slider.Slider) sliderView {
	return sliderView{ID: s.ID, Title: s.Title, ImageURL: s.ImageURL, LinkURL: s.LinkURL, Order: s.DisplayOrder}
}

func (h *Handler) listSliders(w http.ResponseWriter, r *http.Request) {
	h.respondSliders(w, r, true)
}

func (h *Handler) adminListSliders(w http.ResponseWriter, r *http.Request) {
	h.respondSliders(w, r, false)
}

func (h *Handler) respondSliders(w http.ResponseWriter, r *http.Request, visibleOnly bool) {
	sliders, err := h.sliders.List(r.Context(), visibleOnly)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	views := make([]sliderView, len(sliders))
	for i, s := range sliders {
		views[i] = toSliderView(s)
	}
	respondJSON(w, http.StatusOK, views)
}

type sliderReq struct {
	Title        string `json:"title"`
	ImageURL     string `json:"image_url"`
	LinkURL      string `json:"link_url"`
	DisplayOrder int    `json:"display_order"`
}

func (h *Handler) createSlider(w http.ResponseWriter, r *http.Request) {
	var req sliderReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.sliders.Create(r.Context(), req.Title, req.ImageURL, req.LinkURL, req.DisplayOrder)
	if err != nil {
		h.mapSliderError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSliderView(*s))
}

func (h *Handler) updateSlider(w http.ResponseWriter, r *http.Request) {
	var req sliderReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.sliders.Edit(r.Context(), r.PathValue("id"), req.Title, req.ImageURL, req.LinkURL, req.DisplayOrder)
	if err != nil {
		h.mapSliderError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSliderView(*s))
}

func (h *Handler) deleteSlider(w http.ResponseWriter, r *http.Request) {
	if err := h.sliders.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapSliderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mapSliderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, slider.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, slider.ErrMissingImage), errors.Is(err, slider.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		if mapLifecycleError(w, err) {
			return
		}
		respondInternal(w, r, err)
	}
}

type contactView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func toContactView(m contact.Message) contactView {
	return contactView{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Body:      m.Body,
		Read:      m.Read,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.messages.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		if errors.Is(err, contact.ErrMissingFields) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toContactView(*m))
}

func (h *Handler) listContact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	msgs, err := h.messages.List(r.Context(), q.Get("unread") == "true", offset, limit)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	views := make([]contactView, len(msgs))
	for i, m := range msgs {
		views[i] = toContactView(m)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) unreadContact(w http.ResponseWriter, r *http.Request) {
	n, err := h.messages.UnreadCount(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *Handler) openContact(w http.ResponseWriter, r *http.Request) {
	m, err := h.messages.Open(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toContactView(*m))
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
