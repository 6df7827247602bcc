package handler

import (
	"net/http"
)

// requireAdmin guards back office routes. The raw key arrives in the
// X-API-Key header and is verified against its peppered HMAC-SHA256 hash;
// any failure yields an undifferentiated 401.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if _, err := h.verifier.Verify(r.Context(), key); err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
