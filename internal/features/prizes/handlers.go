// Package prizes - handlers.go: каталог и админские эндпоинты призов.
package prizes

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

func (h *Handler) Register(public, admin *mux.Router) {
	public.HandleFunc("/premios", h.list).Methods(http.MethodGet)
	public.HandleFunc("/premios/{id}", h.get).Methods(http.MethodGet)

	admin.HandleFunc("/premios", h.listAll).Methods(http.MethodGet)
	admin.HandleFunc("/premios", h.create).Methods(http.MethodPost)
	admin.HandleFunc("/premios/{id}", h.update).Methods(http.MethodPut)
	admin.HandleFunc("/premios/{id}", h.deactivate).Methods(http.MethodDelete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, true)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, false)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	list, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	p, err := h.service.GetActive(r.Context(), id)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in PrizeInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	admin := web.PrincipalFrom(r.Context())
	p, err := h.service.Create(r.Context(), admin.UserID, in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	var u PrizeUpdate
	if err := web.DecodeJSON(w, r, &u); err != nil {
		web.WriteError(w, r, err)
		return
	}
	admin := web.PrincipalFrom(r.Context())
	p, err := h.service.Update(r.Context(), admin.UserID, id, u)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	admin := web.PrincipalFrom(r.Context())
	if err := h.service.Deactivate(r.Context(), admin.UserID, id); err != nil {
		web.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
