// Package points - handlers.go: журнал баллов и ручные начисления.
package points

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

func (h *Handler) Register(user, admin *mux.Router) {
	user.HandleFunc("/me/movimientos", h.history).Methods(http.MethodGet)
	admin.HandleFunc("/usuarios/{id}/puntos", h.adjust).Methods(http.MethodPost)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	p := web.PrincipalFrom(r.Context())
	list, err := h.service.History(r.Context(), p.UserID, web.QueryInt(r, "limit", defaultHistoryLimit))
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	userID, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	var in AdjustInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}

	admin := web.PrincipalFrom(r.Context())
	balance, err := h.service.Adjust(r.Context(), admin.UserID, userID, in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]int64{"puntos": balance})
}
