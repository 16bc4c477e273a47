// Package auth - handlers.go: вход и выход.
package auth

import (
	"net/http"

	"github.com/gorilla/mux"

	"laboratorio3d.cl/rewards/internal/web"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(public, user *mux.Router) {
	public.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	user.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	res, err := h.service.Login(r.Context(), in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	p := web.PrincipalFrom(r.Context())
	if err := h.service.Logout(r.Context(), p.Token); err != nil {
		web.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
