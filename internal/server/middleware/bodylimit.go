package middleware

import (
	"net/http"

	"laboratorio3d.cl/rewards/internal/web"
)

// BodyLimit задаёт лимит тела запроса, который применяет web.DecodeJSON.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(web.WithBodyLimit(r.Context(), n)))
		})
	}
}
