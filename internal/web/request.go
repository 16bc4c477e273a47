package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"laboratorio3d.cl/rewards/internal/common"
)

// Лимит тела по умолчанию, если BodyLimit не задан в контексте.
const defaultBodyBytes = 1 << 20

// Запас на поля JSON вокруг data URL.
const bodySlack = 64 << 10

// BodyLimitFor считает лимит JSON-тела для файла не больше maxUpload байт.
// Файл приходит как base64 внутри data URL: 4 байта на каждые 3.
func BodyLimitFor(maxUpload int) int64 {
	if maxUpload <= 0 {
		return defaultBodyBytes
	}
	return (int64(maxUpload)+2)/3*4 + bodySlack
}

var (
	errBadJSON = common.Invalid("invalid_body", "Cuerpo de la solicitud inválido")
	errBadID   = common.Invalid("invalid_id", "Identificador inválido")
)

// DecodeJSON разбирает тело запроса в dst. Неизвестные поля запрещены.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, BodyLimit(r.Context()))
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return common.ErrFileTooLarge
		}
		return errBadJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errBadJSON
	}
	return nil
}

// PathID достаёт положительный int64 из параметра маршрута.
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// QueryInt возвращает целый query-параметр или def, если его нет или он кривой.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// QueryInt64Ptr возвращает указатель на int64 из query или nil.
func QueryInt64Ptr(r *http.Request, name string) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
