// Package main - начальное заполнение БД: миграции, уровни, настройки
// рефералов, администратор и (по флагу) тестовые клиенты.
// Повторный запуск ничего не дублирует.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/app"
	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/db/postgres"
	"laboratorio3d.cl/rewards/internal/features/auth"
	"laboratorio3d.cl/rewards/internal/features/points"
	"laboratorio3d.cl/rewards/internal/features/referrals"
	"laboratorio3d.cl/rewards/internal/features/tiers"
	"laboratorio3d.cl/rewards/internal/features/users"
)

const demoPassword = "lab3d-demo-2024"

var seedTiers = []tiers.TierInput{
	{Name: "Bronce", MinPoints: 0, Benefits: "Acumulación de puntos por compras", DisplayOrder: 1},
	{Name: "Plata", MinPoints: 1000, Benefits: "Acceso anticipado a nuevos filamentos", DisplayOrder: 2},
	{Name: "Oro", MinPoints: 5000, Benefits: "Envío gratis en compras sobre $50.000", DisplayOrder: 3},
	{Name: "Platino", MinPoints: 15000, Benefits: "Soporte técnico prioritario", DisplayOrder: 4},
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}
	if cfg.SeedAdminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD не задан")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Ошибка подключения к БД")
	}
	defer pool.Close()

	if err := app.RunMigrations(ctx, pool); err != nil {
		log.WithError(err).Fatal("Ошибка миграций")
	}

	tx := postgres.NewTransactor(pool)
	usersRepo := users.NewRepository(pool)
	tiersRepo := tiers.NewRepository(pool)
	referralsRepo := referrals.NewRepository(pool)

	tiersService := tiers.NewService(tiersRepo, usersRepo)
	pointsService := points.NewService(points.NewRepository(pool), tiersService, tx)
	authService := auth.NewService(auth.NewRepository(pool), usersRepo, nil, cfg)
	usersService := users.NewService(usersRepo, pointsService, tiersService, authService, tx, cfg.StartingPoints)

	if err := seedTierTable(ctx, tiersRepo, tiersService); err != nil {
		log.WithError(err).Fatal("Ошибка заполнения уровней")
	}
	if err := seedReferralConfig(ctx, referralsRepo); err != nil {
		log.WithError(err).Fatal("Ошибка заполнения настроек рефералов")
	}
	if err := seedAdmin(ctx, usersRepo, cfg); err != nil {
		log.WithError(err).Fatal("Ошибка создания администратора")
	}
	if cfg.SeedTestUsers {
		if err := seedCustomers(ctx, usersRepo, usersService); err != nil {
			log.WithError(err).Fatal("Ошибка создания тестовых клиентов")
		}
	}

	log.Info("Начальные данные загружены")
}

func seedTierTable(ctx context.Context, repo *tiers.Repository, svc *tiers.Service) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.WithField("count", n).Info("Уровни уже есть, пропускаем")
		return nil
	}
	for _, in := range seedTiers {
		if _, err := svc.Create(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

func seedReferralConfig(ctx context.Context, repo *referrals.Repository) error {
	current, err := repo.GetConfig(ctx)
	if err != nil {
		return err
	}
	// Строка уже есть
	if !current.UpdatedAt.IsZero() {
		return nil
	}
	return repo.SaveConfig(ctx, &referrals.Config{
		CommissionPercent:  decimal.NewFromInt(10),
		FirstPurchaseBonus: 0,
		Active:             true,
	})
}

func seedAdmin(ctx context.Context, repo *users.Repository, cfg *config.Config) error {
	email := common.NormalizeEmail(cfg.SeedAdminEmail)
	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		log.WithField("email", email).Info("Администратор уже существует")
		return nil
	}
	if !errors.Is(err, common.ErrUserNotFound) {
		return err
	}

	hash, err := common.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	admin := &users.User{
		Name:         "Administrador",
		Email:        email,
		PasswordHash: hash,
		Role:         users.RoleAdmin,
		ReferralCode: common.GenerateReferralCode(),
		CanRedeem:    false,
		Active:       true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": admin.ID,
		"email":   email,
	}).Info("Создан администратор")
	return nil
}

// seedCustomers создаёт двух клиентов: второй приглашён первым.
func seedCustomers(ctx context.Context, repo *users.Repository, svc *users.Service) error {
	first, err := ensureCustomer(ctx, repo, svc, users.RegisterInput{
		Name:     "Ana Pérez",
		Email:    "ana@laboratorio3d.cl",
		Password: demoPassword,
	})
	if err != nil {
		return err
	}

	_, err = ensureCustomer(ctx, repo, svc, users.RegisterInput{
		Name:         "Bruno Soto",
		Email:        "bruno@laboratorio3d.cl",
		Password:     demoPassword,
		ReferralCode: first.ReferralCode,
	})
	return err
}

func ensureCustomer(ctx context.Context, repo *users.Repository, svc *users.Service, in users.RegisterInput) (*users.User, error) {
	u, err := repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, common.ErrUserNotFound) {
		return nil, err
	}
	return svc.Register(ctx, in)
}
