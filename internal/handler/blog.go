package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/blog"
)

type postView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Body      string `json:"body,omitempty"`
	Published bool   `json:"published"`
	ViewCount int64  `json:"view_count"`
	CreatedAt string `json:"created_at"`
}

func toPostView(p blog.Post, withBody bool) postView {
	v := postView{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Published: p.Published,
		ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if withBody {
		v.Body = p.Body
	}
	return v
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	h.respondPosts(w, r, true)
}

func (h *Handler) adminListPosts(w http.ResponseWriter, r *http.Request) {
	h.respondPosts(w, r, false)
}

func (h *Handler) respondPosts(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	q := r.URL.Query()
	page := blog.Page{PublishedOnly: publishedOnly}
	page.Offset, _ = strconv.Atoi(q.Get("offset"))
	page.Limit, _ = strconv.Atoi(q.Get("limit"))

	posts, err := h.posts.List(r.Context(), page)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	views := make([]postView, len(posts))
	for i, p := range posts {
		views[i] = toPostView(p, false)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) readPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Read(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPostView(*p, true))
}

type postReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req postReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.posts.Create(r.Context(), req.Title, req.Body)
	if err != nil {
		h.mapBlogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPostView(*p, true))
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	var req postReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.posts.Update(r.Context(), r.PathValue("id"), req.Title, req.Body)
	if err != nil {
		h.mapBlogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPostView(*p, true))
}

func (h *Handler) publishPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Published bool `json:"published"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.posts.SetPublished(r.Context(), r.PathValue("id"), req.Published); err != nil {
		h.mapBlogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapBlogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mapBlogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, blog.ErrEmptyTitle):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, blog.ErrSlugExhausted):
		respondError(w, http.StatusConflict, err.Error())
	default:
		if mapLifecycleError(w, err) {
			return
		}
		respondInternal(w, r, err)
	}
}
