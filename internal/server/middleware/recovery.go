package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/web"
)

// Recover перехватывает панику обработчика и отвечает 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithFields(log.Fields{
					"component":  "panic_recovery",
					"request_id": web.RequestID(r.Context()),
					"panic":      fmt.Sprintf("%v", rec),
					"stack":      string(debug.Stack()),
				}).Error("ПАНИКА в обработчике, восстановлено")
				web.WriteError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
