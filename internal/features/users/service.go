// Package users - service.go содержит бизнес-логику пользователей.
// Регистрация, профиль с прогрессом уровня, управление аккаунтами.
package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/features/points"
	"laboratorio3d.cl/rewards/internal/features/tiers"
)

const (
	minPasswordLength = 8
	// Сколько раз пробуем сгенерировать уникальный реферальный код
	referralCodeAttempts = 3
)

// errReferralCodeCollision - сгенерированный код уже занят, нужно повторить.
var errReferralCodeCollision = errors.New("коллизия реферального кода")

type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	List(ctx context.Context, f ListFilter) ([]*User, error)
	UpdateFlags(ctx context.Context, id int64, f FlagsUpdate) error
}

type PointsCreditor interface {
	Credit(ctx context.Context, c points.Credit) (int64, error)
}

type TierProgress interface {
	Progress(ctx context.Context, points int64) (tiers.Progress, error)
}

// SessionRevoker закрывает все сессии пользователя (при деактивации).
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID int64) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Profile - ответ /api/me.
type Profile struct {
	*User
	Tier tiers.Progress `json:"nivel"`
}

type Service struct {
	repo           Store
	points         PointsCreditor
	tiers          TierProgress
	sessions       SessionRevoker
	tx             Transactor
	startingPoints int64
}

func NewService(repo Store, pts PointsCreditor, tr TierProgress, sessions SessionRevoker, tx Transactor, startingPoints int64) *Service {
	return &Service{
		repo:           repo,
		points:         pts,
		tiers:          tr,
		sessions:       sessions,
		tx:             tx,
		startingPoints: startingPoints,
	}
}

// Register создаёт клиента, запоминает пригласившего и начисляет стартовые баллы.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, common.ErrNameRequired
	}
	email := common.NormalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, common.ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, common.ErrWeakPassword
	}

	var referredBy *int64
	if code := common.NormalizeReferralCode(in.ReferralCode); code != "" {
		referrer, err := s.repo.GetByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, common.ErrUserNotFound) {
				return nil, common.ErrInvalidReferralCode
			}
			return nil, err
		}
		if !referrer.Active {
			return nil, common.ErrInvalidReferralCode
		}
		referredBy = &referrer.ID
	}

	hash, err := common.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleCustomer,
		ReferredBy:   referredBy,
		CanRedeem:    true,
		Active:       true,
	}

	for attempt := 1; ; attempt++ {
		u.ReferralCode = common.GenerateReferralCode()
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.repo.Create(ctx, u); err != nil {
				return err
			}
			if s.startingPoints <= 0 {
				return nil
			}
			balance, err := s.points.Credit(ctx, points.Credit{
				UserID:      u.ID,
				Amount:      s.startingPoints,
				Reason:      points.ReasonSignup,
				Description: "Puntos de bienvenida",
			})
			u.Points = balance
			return err
		})
		if errors.Is(err, errReferralCodeCollision) && attempt < referralCodeAttempts {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":     u.ID,
		"email":       u.Email,
		"referred_by": referredBy,
	}).Info("Зарегистрирован пользователь")

	return u, nil
}

// GetProfile возвращает пользователя вместе с уровнем и прогрессом.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := s.tiers.Progress(ctx, u.Points)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Tier: progress}, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*User, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	f.Search = strings.TrimSpace(f.Search)
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*User{}
	}
	return list, nil
}

// UpdateFlags включает/выключает аккаунт и право на canje.
// Отключённый пользователь сразу теряет все сессии.
func (s *Service) UpdateFlags(ctx context.Context, adminID, userID int64, f FlagsUpdate) (*User, error) {
	if err := s.repo.UpdateFlags(ctx, userID, f); err != nil {
		return nil, err
	}
	if f.Active != nil && !*f.Active {
		if err := s.sessions.RevokeUser(ctx, userID); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"admin_id":   adminID,
		"user_id":    userID,
		"active":     f.Active,
		"can_redeem": f.CanRedeem,
	}).Info("Изменены флаги пользователя")

	return s.repo.GetByID(ctx, userID)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}
