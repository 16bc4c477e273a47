// Package redemptions - handlers.go: canjes клиента и админка canjes.
package redemptions

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
	user.HandleFunc("/canjes", h.redeem).Methods(http.MethodPost)
	user.HandleFunc("/canjes", h.listMine).Methods(http.MethodGet)

	admin.HandleFunc("/canjes", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/canjes/{id}", h.updateState).Methods(http.MethodPatch)
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var in RedeemInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	p := web.PrincipalFrom(r.Context())
	res, err := h.service.Redeem(r.Context(), p.UserID, in.PrizeID)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	p := web.PrincipalFrom(r.Context())
	list, err := h.service.ListMine(r.Context(), p.UserID)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), ListFilter{
		State:  r.URL.Query().Get("estado"),
		UserID: web.QueryInt64Ptr(r, "usuario_id"),
		Limit:  web.QueryInt(r, "limit", 50),
		Offset: web.QueryInt(r, "offset", 0),
	})
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) updateState(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	var in StateUpdate
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	admin := web.PrincipalFrom(r.Context())
	rd, err := h.service.UpdateState(r.Context(), admin.UserID, id, in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, rd)
}
