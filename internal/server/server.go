// Package server собирает HTTP-маршруты сервиса и цепочку middleware.
//
// Маршруты:
//
//	/api/...        - публичные и пользовательские (Bearer-токен)
//	/api/admin/...  - только роль admin
//	/healthz        - проверка БД
//	/metrics        - Prometheus
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/features/auth"
	"laboratorio3d.cl/rewards/internal/features/points"
	"laboratorio3d.cl/rewards/internal/features/prizes"
	"laboratorio3d.cl/rewards/internal/features/receipts"
	"laboratorio3d.cl/rewards/internal/features/redemptions"
	"laboratorio3d.cl/rewards/internal/features/referrals"
	"laboratorio3d.cl/rewards/internal/features/tiers"
	"laboratorio3d.cl/rewards/internal/features/users"
	"laboratorio3d.cl/rewards/internal/server/middleware"
	"laboratorio3d.cl/rewards/internal/web"
)

var (
	errRouteNotFound    = common.NotFound("route_not_found", "Ruta no encontrada")
	errMethodNotAllowed = common.Invalid("method_not_allowed", "Método no permitido")
)

// Pinger - проверка доступности БД для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers - обработчики всех модулей.
type Handlers struct {
	Auth        *auth.Handler
	Users       *users.Handler
	Points      *points.Handler
	Tiers       *tiers.Handler
	Receipts    *receipts.Handler
	Referrals   *referrals.Handler
	Prizes      *prizes.Handler
	Redemptions *redemptions.Handler
}

type Server struct {
	http    *http.Server
	limiter *middleware.RateLimiter
}

func New(cfg *config.Config, h Handlers, authn middleware.Authenticator, db Pinger) *Server {
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := NewRouter(h, authn, db)

	var handler http.Handler = router
	handler = middleware.BodyLimit(web.BodyLimitFor(cfg.MaxUploadBytes))(handler)
	handler = limiter.Middleware(handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins)(handler)
	handler = middleware.Recover(handler)
	handler = middleware.RequestLogger(handler)

	return &Server{
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadTimeout:       cfg.HTTPReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.HTTPWriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		limiter: limiter,
	}
}

// NewRouter регистрирует маршруты. Подроутер /api/admin идёт первым:
// его middleware требует роль admin.
func NewRouter(h Handlers, authn middleware.Authenticator, db Pinger) *mux.Router {
	root := mux.NewRouter()
	root.Use(middleware.Metrics)
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		web.WriteError(w, r, errRouteNotFound)
	})
	root.MethodNotAllowedHandler = methodNotAllowed

	root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	root.HandleFunc("/healthz", healthz(db)).Methods(http.MethodGet)

	// Вложенный подроутер без своего MethodNotAllowedHandler теряет 405
	// и запрос уходит в 404. Пути user и public не пересекаются.
	api := root.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = methodNotAllowed

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAuth(authn), middleware.RequireAdmin)
	admin.MethodNotAllowedHandler = methodNotAllowed

	user := api.NewRoute().Subrouter()
	user.Use(middleware.RequireAuth(authn))
	user.MethodNotAllowedHandler = methodNotAllowed

	public := api.NewRoute().Subrouter()
	public.MethodNotAllowedHandler = methodNotAllowed

	h.Auth.Register(public, user)
	h.Users.Register(public, user, admin)
	h.Points.Register(user, admin)
	h.Tiers.Register(public, admin)
	h.Receipts.Register(user, admin)
	h.Referrals.Register(admin)
	h.Prizes.Register(public, admin)
	h.Redemptions.Register(user, admin)

	return root
}

var methodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusMethodNotAllowed, web.ErrorResponse{
		Error: errMethodNotAllowed.Message,
		Code:  errMethodNotAllowed.Code,
	})
})

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.WithError(err).Warn("healthz: БД недоступна")
			web.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_unavailable"})
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Start блокируется до остановки сервера.
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP-сервер запущен")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown дожидается завершения активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Close()
	return s.http.Shutdown(ctx)
}
