package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/corvel/storefront/internal/domain/address"
	"github.com/corvel/storefront/internal/domain/user"
)

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

func toUserView(u user.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrEmailTaken):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondInternal(w, r, err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, toUserView(*u))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserView(*u))
}

func (h *Handler) disableUser(w http.ResponseWriter, r *http.Request) {
	h.userLifecycle(w, r, h.users.Disable)
}

func (h *Handler) enableUser(w http.ResponseWriter, r *http.Request) {
	h.userLifecycle(w, r, h.users.Enable)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	h.userLifecycle(w, r, h.users.Delete)
}

func (h *Handler) userLifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) error) {
	if err := op(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		if mapLifecycleError(w, err) {
			return
		}
		respondInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addressReq struct {
	RecipientName string `json:"recipient_name"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	IsDefault     bool   `json:"is_default"`
}

func (req addressReq) toDomain() address.Address {
	return address.Address{
		RecipientName: req.RecipientName,
		Line1:         req.Line1,
		Line2:         req.Line2,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		IsDefault:     req.IsDefault,
	}
}

type addressView struct {
	ID            string `json:"id"`
	RecipientName string `json:"recipient_name"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	IsDefault     bool   `json:"is_default"`
}

func toAddressView(a address.Address) addressView {
	return addressView{
		ID:            a.ID,
		RecipientName: a.RecipientName,
		Line1:         a.Line1,
		Line2:         a.Line2,
		City:          a.City,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		IsDefault:     a.IsDefault,
	}
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	addrs, err := h.addresses.List(r.Context(), uid)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	views := make([]addressView, len(addrs))
	for i, a := range addrs {
		views[i] = toAddressView(a)
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	var req addressReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := req.toDomain()
	a.UserID = uid
	created, err := h.addresses.Add(r.Context(), a)
	if err != nil {
		h.mapAddressError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAddressView(*created))
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	var req addressReq
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := req.toDomain()
	a.ID = r.PathValue("id")
	a.UserID = uid
	updated, err := h.addresses.Update(r.Context(), a)
	if err != nil {
		h.mapAddressError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAddressView(*updated))
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	if err := h.addresses.Delete(r.Context(), uid, r.PathValue("id")); err != nil {
		h.mapAddressError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) makeDefaultAddress(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	if err := h.addresses.MakeDefault(r.Context(), uid, r.PathValue("id")); err != nil {
		h.mapAddressError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) mapAddressError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, address.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, address.ErrIncomplete):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondInternal(w, r, err)
	}
}
