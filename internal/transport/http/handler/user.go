package handler

import (
	"net/http"

	"github.com/go-blog-auth/internal/application/user"
	"github.com/go-blog-auth/internal/domain"
	"github.com/go-chi/chi/v5"
)

// UserHandler serves the caller's profile and public profile lookups.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetProfile(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), u, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *UserHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.ChangeUsernameRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ChangeUsername(r.Context(), u, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UserHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetPublicProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
