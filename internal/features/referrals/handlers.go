// Package referrals - handlers.go: настройки программы в админке.
package referrals

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

func (h *Handler) Register(admin *mux.Router) {
	admin.HandleFunc("/referidos/config", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/referidos/config", h.update).Methods(http.MethodPut)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetConfig(r.Context())
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in ConfigInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	admin := web.PrincipalFrom(r.Context())
	c, err := h.service.UpdateConfig(r.Context(), admin.UserID, in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, c)
}
