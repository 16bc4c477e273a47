// Package tiers - handlers.go: HTTP-эндпоинты уровней.
package tiers

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

// Register подключает маршруты к публичному и админскому роутерам.
func (h *Handler) Register(public, admin *mux.Router) {
	public.HandleFunc("/niveles", h.list).Methods(http.MethodGet)

	admin.HandleFunc("/niveles", h.listAll).Methods(http.MethodGet)
	admin.HandleFunc("/niveles", h.create).Methods(http.MethodPost)
	admin.HandleFunc("/niveles/{id}", h.update).Methods(http.MethodPut)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListActive(r.Context())
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAll(r.Context())
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []Tier{}
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in TierInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	t, err := h.service.Create(r.Context(), in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	var u TierUpdate
	if err := web.DecodeJSON(w, r, &u); err != nil {
		web.WriteError(w, r, err)
		return
	}
	t, err := h.service.Update(r.Context(), id, u)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, t)
}
