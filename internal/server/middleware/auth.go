package middleware

import (
	"context"
	"net/http"
	"strings"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/web"
)

//go:generate mockgen -destination=mock_auth_test.go -package=middleware . Authenticator

// Authenticator превращает токен сессии в пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*web.Principal, error)
}

// RequireAuth пропускает только запросы с действующим Bearer-токеном.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				web.WriteError(w, r, common.ErrUnauthenticated)
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				web.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(web.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin ставится после RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := web.PrincipalFrom(r.Context())
		if p == nil {
			web.WriteError(w, r, common.ErrUnauthenticated)
			return
		}
		if !p.IsAdmin() {
			web.WriteError(w, r, common.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
