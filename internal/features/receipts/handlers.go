// Package receipts - handlers.go: HTTP-эндпоинты чеков.
package receipts

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
	user.HandleFunc("/comprobantes", h.submit).Methods(http.MethodPost)
	user.HandleFunc("/comprobantes", h.listMine).Methods(http.MethodGet)

	admin.HandleFunc("/comprobantes", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/comprobantes/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/comprobantes/{id}/revision", h.review).Methods(http.MethodPost)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	p := web.PrincipalFrom(r.Context())
	rc, err := h.service.Submit(r.Context(), p.UserID, in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, rc)
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

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	rc, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, rc)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathID(r, "id")
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	var in ReviewInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		web.WriteError(w, r, err)
		return
	}
	admin := web.PrincipalFrom(r.Context())
	res, err := h.service.Review(r.Context(), admin.UserID, id, in)
	if err != nil {
		web.WriteError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, res)
}
