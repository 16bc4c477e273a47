// Package app инициализирует все компоненты приложения.
// app.go - точка сборки: создаёт БД-пул, кэш, репозитории, сервисы,
// обработчики и собирает всё в HTTP-сервер и планировщик.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/db/cache"
	"laboratorio3d.cl/rewards/internal/db/postgres"
	"laboratorio3d.cl/rewards/internal/features/auth"
	"laboratorio3d.cl/rewards/internal/features/points"
	"laboratorio3d.cl/rewards/internal/features/prizes"
	"laboratorio3d.cl/rewards/internal/features/receipts"
	"laboratorio3d.cl/rewards/internal/features/redemptions"
	"laboratorio3d.cl/rewards/internal/features/referrals"
	"laboratorio3d.cl/rewards/internal/features/tiers"
	"laboratorio3d.cl/rewards/internal/features/users"
	"laboratorio3d.cl/rewards/internal/jobs"
	"laboratorio3d.cl/rewards/internal/server"
)

// App содержит все компоненты приложения.
type App struct {
	Server    *server.Server
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Cache     *cache.SessionCache // nil, если redis не настроен
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен: компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Кэш сессий ===
	var (
		sessionCache *cache.SessionCache
		authCache    auth.SessionCache
	)
	if cfg.RedisEnabled() {
		sessionCache, err = cache.NewSessionCache(ctx, cfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка подключения к redis: %w", err)
		}
		authCache = sessionCache
		log.Info("Кэш сессий в redis включён")
	}

	// === 3. Репозитории ===
	tx := postgres.NewTransactor(pool)
	usersRepo := users.NewRepository(pool)
	authRepo := auth.NewRepository(pool)
	tiersRepo := tiers.NewRepository(pool)
	pointsRepo := points.NewRepository(pool)
	referralsRepo := referrals.NewRepository(pool)
	receiptsRepo := receipts.NewRepository(pool)
	prizesRepo := prizes.NewRepository(pool)
	redemptionsRepo := redemptions.NewRepository(pool)

	// === 4. Сервисы ===
	authService := auth.NewService(authRepo, usersRepo, authCache, cfg)
	tiersService := tiers.NewService(tiersRepo, usersRepo)
	pointsService := points.NewService(pointsRepo, tiersService, tx)
	usersService := users.NewService(usersRepo, pointsService, tiersService, authService, tx, cfg.StartingPoints)
	referralsService := referrals.NewService(referralsRepo, usersRepo, receiptsRepo, pointsService, cfg)
	receiptsService := receipts.NewService(receiptsRepo, usersRepo, pointsService, referralsService, tx, cfg)
	prizesService := prizes.NewService(prizesRepo, cfg)
	redemptionsService := redemptions.NewService(redemptionsRepo, usersRepo, prizesRepo, tx)

	// === 5. Обработчики и сервер ===
	handlers := server.Handlers{
		Auth:        auth.NewHandler(authService),
		Users:       users.NewHandler(usersService),
		Points:      points.NewHandler(pointsService),
		Tiers:       tiers.NewHandler(tiersService),
		Receipts:    receipts.NewHandler(receiptsService),
		Referrals:   referrals.NewHandler(referralsService),
		Prizes:      prizes.NewHandler(prizesService),
		Redemptions: redemptions.NewHandler(redemptionsService),
	}
	srv := server.New(cfg, handlers, authService, pool)

	// === 6. Планировщик задач ===
	scheduler := jobs.NewScheduler(authService)

	return &App{
		Server:    srv,
		Scheduler: scheduler,
		DB:        pool,
		Cache:     sessionCache,
	}, nil
}

// Close освобождает соединения.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия redis")
		}
	}
	a.DB.Close()
}
