// Package users - handlers.go: регистрация, профиль и админские эндпоинты пользователей.
package users

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

func (h *Handler) Register(public, user, admin *mux.Router) {
	public.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)

	user.HandleFunc("/me", h.me).Methods(http.MethodGet)

	admin.HandleFunc("/usuarios", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/usuarios/{id}", h.updateFlags).Methods(http.MethodPatch)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	u, err := h.service.Register(r.Context(), in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p := web.PrincipalFrom(r.Context())
	profile, err := h.service.GetProfile(r.Context(), p.UserID)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.service.List(r.Context(), ListFilter{
		Search: q.Get("q"),
		Role:   q.Get("rol"),
		Limit:  web.QueryInt(r, "limit", 50),
		Offset: web.QueryInt(r, "offset", 0),
	})
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) updateFlags(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	var f FlagsUpdate
	if err := web.DecodeJSON(w, r, &f); err != nil {
		web.WriteError(w, r, err)
		return
	}
	admin := web.PrincipalFrom(r.Context())
	u, err := h.service.UpdateFlags(r.Context(), admin.UserID, id, f)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, u)
}
