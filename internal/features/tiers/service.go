// Package tiers - service.go: расчёт уровня по баллам и управление уровнями.
package tiers

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
)

// Store - хранилище уровней.
type Store interface {
	List(ctx context.Context, activeOnly bool) ([]Tier, error)
	GetByID(ctx context.Context, id int64) (*Tier, error)
	Create(ctx context.Context, t *Tier) error
	Update(ctx context.Context, id int64, u TierUpdate) error
}

// UserTierSetter сохраняет уровень пользователя.
type UserTierSetter interface {
	SetTier(ctx context.Context, userID int64, tierID *int64) error
}

type Service struct {
	repo  Store
	users UserTierSetter
}

func NewService(repo Store, users UserTierSetter) *Service {
	return &Service{repo: repo, users: users}
}

// ListActive возвращает активные уровни; пустая таблица заменяется DefaultTiers.
func (s *Service) ListActive(ctx context.Context) ([]Tier, error) {
	list, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return append([]Tier(nil), DefaultTiers...), nil
	}
	return list, nil
}

// ListAll - для админки, включая неактивные.
func (s *Service) ListAll(ctx context.Context) ([]Tier, error) {
	return s.repo.List(ctx, false)
}

// Progress считает уровень для заданного количества баллов.
func (s *Service) Progress(ctx context.Context, points int64) (Progress, error) {
	list, err := s.repo.List(ctx, true)
	if err != nil {
		return Progress{}, err
	}
	return ProgressFor(list, points), nil
}

// SyncUserTier пересчитывает и сохраняет уровень пользователя после изменения баланса.
// Вызывается внутри транзакции начисления.
func (s *Service) SyncUserTier(ctx context.Context, userID, points int64) (Tier, error) {
	list, err := s.repo.List(ctx, true)
	if err != nil {
		return Tier{}, err
	}
	tier := Resolve(list, points)

	var tierID *int64
	if tier.ID != 0 {
		tierID = &tier.ID
	}
	if err := s.users.SetTier(ctx, userID, tierID); err != nil {
		return Tier{}, err
	}
	return tier, nil
}

func (s *Service) Create(ctx context.Context, in TierInput) (*Tier, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.MinPoints < 0 {
		return nil, common.ErrInvalidTier
	}

	t := &Tier{
		Name:         in.Name,
		MinPoints:    in.MinPoints,
		Benefits:     strings.TrimSpace(in.Benefits),
		DisplayOrder: in.DisplayOrder,
		Active:       true,
	}
	if in.Active != nil {
		t.Active = *in.Active
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"tier_id":    t.ID,
		"name":       t.Name,
		"min_points": t.MinPoints,
	}).Info("Создан уровень")
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int64, u TierUpdate) (*Tier, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, common.ErrInvalidTier
		}
		u.Name = &name
	}
	if u.MinPoints != nil && *u.MinPoints < 0 {
		return nil, common.ErrInvalidTier
	}

	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
