// Package web содержит общие HTTP-утилиты для обработчиков:
// разбор JSON, ответы, маппинг ошибок в статусы, текущий пользователь в контексте.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
)

// ErrorResponse - тело ответа при ошибке.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON пишет v как JSON с указанным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Ошибка сериализации ответа")
	}
}

// StatusFor возвращает HTTP-статус для ошибки.
func StatusFor(err error) int {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case common.KindInvalid:
		return http.StatusBadRequest
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindUnauthenticated:
		return http.StatusUnauthorized
	case common.KindForbidden:
		return http.StatusForbidden
	case common.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError пишет ошибку клиенту. Внутренние ошибки логируются,
// а наружу уходит только общий текст.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	var appErr *common.Error
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": RequestID(r.Context()),
		}).WithError(err).Error("Внутренняя ошибка обработчика")
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Error interno del servidor",
			Code:  "internal_error",
		})
		return
	}

	WriteJSON(w, status, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}
