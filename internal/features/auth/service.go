// Package auth - service.go: вход по email и паролю (Argon2id), выдача
// непрозрачных токенов, проверка токена на каждом запросе.
// Защита от brute-force: LOGIN_MAX_ATTEMPTS неудач за LOGIN_LOCK_WINDOW = блокировка.
package auth

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/features/users"
	"laboratorio3d.cl/rewards/internal/web"
)

//go:generate mockgen -destination=mock_store_test.go -package=auth . SessionCache,Store,UserFinder

// Попытки входа храним не меньше суток
const attemptsRetention = 24 * time.Hour

type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, token string) (*SessionInfo, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID int64) ([]string, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	LogAttempt(ctx context.Context, email string, success bool) error
	CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error)
	PurgeAttempts(ctx context.Context, before time.Time) (int64, error)
}

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// SessionCache - необязательный кэш токенов (redis).
type SessionCache interface {
	Get(ctx context.Context, token string) (*web.Principal, error)
	Set(ctx context.Context, token string, p *web.Principal, expiresAt time.Time) error
	Delete(ctx context.Context, tokens ...string) error
}

type Service struct {
	repo  Store
	users UserFinder
	cache SessionCache // nil, если redis не настроен
	cfg   *config.Config
	now   func() time.Time
}

func NewService(repo Store, usersRepo UserFinder, cache SessionCache, cfg *config.Config) *Service {
	return &Service{
		repo:  repo,
		users: usersRepo,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Login проверяет пароль и создаёт сессию на SESSION_TTL.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := common.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, common.ErrInvalidCredentials
	}

	failures, err := s.repo.CountRecentFailures(ctx, email, s.now().Add(-s.cfg.LoginLockWindow))
	if err != nil {
		return nil, err
	}
	if failures >= s.cfg.LoginMaxAttempts {
		log.WithField("email", email).Warn("Вход заблокирован: слишком много попыток")
		return nil, common.ErrTooManyAttempts
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrUserNotFound) {
		return nil, err
	}
	if u == nil || !common.VerifyPassword(in.Password, u.PasswordHash) {
		if err := s.repo.LogAttempt(ctx, email, false); err != nil {
			log.WithError(err).Warn("Не удалось записать попытку входа")
		}
		return nil, common.ErrInvalidCredentials
	}
	if !u.Active {
		return nil, common.ErrUserInactive
	}
	if err := s.repo.LogAttempt(ctx, email, true); err != nil {
		log.WithError(err).Warn("Не удалось записать попытку входа")
	}

	token, err := common.GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	session := &Session{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.cfg.SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": u.ID,
		"role":    u.Role,
	}).Info("Пользователь вошёл")

	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: u}, nil
}

// Logout удаляет сессию. Повторный выход не ошибка.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return err
	}
	s.invalidate(ctx, token)
	return nil
}

// Authenticate превращает токен в Principal.
// Сначала смотрим в кэш, затем в БД. Истёкшая сессия удаляется.
func (s *Service) Authenticate(ctx context.Context, token string) (*web.Principal, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	if s.cache != nil {
		if p, err := s.cache.Get(ctx, token); err == nil && p != nil {
			return p, nil
		}
	}

	info, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !info.ExpiresAt.After(s.now()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil {
			log.WithError(err).Warn("Не удалось удалить истёкшую сессию")
		}
		return nil, common.ErrSessionExpired
	}
	if !info.Active {
		return nil, common.ErrUserInactive
	}

	p := &web.Principal{
		UserID: info.UserID,
		Email:  info.Email,
		Role:   info.Role,
		Token:  token,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, token, p, info.ExpiresAt); err != nil {
			log.WithError(err).Debug("Не удалось положить сессию в кэш")
		}
	}
	return p, nil
}

// RevokeUser закрывает все сессии пользователя.
func (s *Service) RevokeUser(ctx context.Context, userID int64) error {
	tokens, err := s.repo.DeleteUserSessions(ctx, userID)
	if err != nil {
		return err
	}
	s.invalidate(ctx, tokens...)

	log.WithFields(log.Fields{
		"user_id":  userID,
		"sessions": len(tokens),
	}).Info("Сессии пользователя закрыты")
	return nil
}

// PurgeExpired чистит истёкшие сессии и старые попытки входа. Вызывается планировщиком.
func (s *Service) PurgeExpired(ctx context.Context) error {
	now := s.now()
	sessions, err := s.repo.PurgeExpired(ctx, now)
	if err != nil {
		return err
	}

	retention := s.cfg.LoginLockWindow
	if retention < attemptsRetention {
		retention = attemptsRetention
	}
	attempts, err := s.repo.PurgeAttempts(ctx, now.Add(-retention))
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"sessions": sessions,
		"attempts": attempts,
	}).Info("Очистка сессий завершена")
	return nil
}

func (s *Service) invalidate(ctx context.Context, tokens ...string) {
	if s.cache == nil || len(tokens) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, tokens...); err != nil {
		log.WithError(err).Warn("Не удалось удалить сессию из кэша")
	}
}
