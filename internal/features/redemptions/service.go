// Package redemptions - service.go: canje приза.
// Все проверки и изменения выполняются в одной транзакции под блокировкой
// строки пользователя и строки приза.
package redemptions

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/features/prizes"
	"laboratorio3d.cl/rewards/internal/features/users"
)

var redeemedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rewards_redemptions_total",
	Help: "Попытки canje по результату",
}, []string{"result"})

type Store interface {
	Create(ctx context.Context, rd *Redemption) error
	Exists(ctx context.Context, userID, prizeID int64) (bool, error)
	LockByID(ctx context.Context, id int64) (*Redemption, error)
	List(ctx context.Context, f ListFilter) ([]*Redemption, error)
	UpdateState(ctx context.Context, id int64, state string, notes *string) error
}

type UserLocker interface {
	LockByID(ctx context.Context, id int64) (*users.User, error)
}

type PrizeStock interface {
	LockByID(ctx context.Context, id int64) (*prizes.Prize, error)
	DecrementStock(ctx context.Context, id int64) (bool, error)
	IncrementStock(ctx context.Context, id int64) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   Store
	users  UserLocker
	prizes PrizeStock
	tx     Transactor
}

func NewService(repo Store, usersRepo UserLocker, prizeRepo PrizeStock, tx Transactor) *Service {
	return &Service{repo: repo, users: usersRepo, prizes: prizeRepo, tx: tx}
}

// Redeem оформляет canje: остаток приза уменьшается на 1, создаётся запись pendiente.
// Баллы пользователя не списываются.
func (s *Service) Redeem(ctx context.Context, userID, prizeID int64) (*RedeemResult, error) {
	if prizeID <= 0 {
		return nil, common.ErrPrizeNotFound
	}

	var res *RedeemResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.LockByID(ctx, userID)
		if err != nil {
			return err
		}
		p, err := s.prizes.LockByID(ctx, prizeID)
		if err != nil {
			return err
		}

		// Повтор отклоняется при любом остатке и балансе
		exists, err := s.repo.Exists(ctx, userID, prizeID)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrDuplicateRedemption
		}

		switch {
		case !p.Active:
			return common.ErrPrizeInactive
		case p.Stock <= 0:
			return common.ErrPrizeOutOfStock
		case u.Points < p.PointsRequired:
			return common.ErrInsufficientPoints
		case !u.CanRedeem:
			return common.ErrRedemptionNotAllowed
		}

		ok, err := s.prizes.DecrementStock(ctx, prizeID)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrPrizeOutOfStock
		}
		p.Stock--

		rd := &Redemption{
			UserID:         userID,
			PrizeID:        prizeID,
			PrizeName:      p.Name,
			PointsRequired: p.PointsRequired,
			State:          StatePending,
		}
		if err := s.repo.Create(ctx, rd); err != nil {
			return err
		}

		res = &RedeemResult{Redemption: rd, Prize: p, Balance: u.Points}
		return nil
	})
	if err != nil {
		redeemedTotal.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}

	redeemedTotal.WithLabelValues("ok").Inc()
	log.WithFields(log.Fields{
		"user_id":  userID,
		"prize_id": prizeID,
		"canje_id": res.Redemption.ID,
		"stock":    res.Prize.Stock,
	}).Info("Оформлен canje")

	return res, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]*Redemption, error) {
	return s.List(ctx, ListFilter{UserID: &userID, Limit: 100})
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Redemption, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Redemption{}
	}
	return list, nil
}

// UpdateState переводит canje в новое состояние.
// pendiente → aprobado | rechazado, aprobado → entregado.
// При отклонении единица приза возвращается на склад.
func (s *Service) UpdateState(ctx context.Context, adminID, id int64, in StateUpdate) (*Redemption, error) {
	next := strings.ToLower(strings.TrimSpace(in.State))
	var notes *string
	if n := strings.TrimSpace(in.Notes); n != "" {
		notes = &n
	}

	var rd *Redemption
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rd, err = s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if !slices.Contains(transitions[rd.State], next) {
			return common.ErrInvalidRedemptionTransition
		}
		if next == StateRejected {
			if err := s.prizes.IncrementStock(ctx, rd.PrizeID); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateState(ctx, id, next, notes); err != nil {
			return err
		}
		rd.State = next
		if notes != nil {
			rd.Notes = notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"canje_id": id,
		"state":    next,
	}).Info("Изменено состояние canje")
	return rd, nil
}

func resultLabel(err error) string {
	var e *common.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "error"
}
