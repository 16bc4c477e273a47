// Package middleware содержит промежуточные обработчики HTTP: логирование,
// восстановление после паники, rate-limiting, метрики, CORS и аутентификацию.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/web"
)

const requestIDHeader = "X-Request-ID"

// statusWriter запоминает код ответа.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// RequestLogger присваивает запросу id и пишет строку лога по завершении.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(web.WithRequestID(r.Context(), id))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		fields := log.Fields{
			"request_id":  id,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"bytes":       sw.bytes,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		entry := log.WithFields(fields)
		if sw.status >= 500 {
			entry.Warn("Запрос завершился ошибкой")
			return
		}
		entry.Debug("Запрос обработан")
	})
}
