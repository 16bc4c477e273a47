// Package points - service.go: начисление баллов с записью в журнал и пересчётом уровня.
package points

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/features/tiers"
)

const defaultHistoryLimit = 50

var creditedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rewards_points_credited_total",
	Help: "Начисленные баллы по причинам",
}, []string{"reason"})

type Store interface {
	AddPoints(ctx context.Context, userID, amount int64) (int64, error)
	AppendLedger(ctx context.Context, c Credit) error
	History(ctx context.Context, userID int64, limit int) ([]LedgerEntry, error)
}

// TierSyncer пересчитывает уровень пользователя после изменения баланса.
type TierSyncer interface {
	SyncUserTier(ctx context.Context, userID, points int64) (tiers.Tier, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service - единственное место, где меняется баланс пользователя.
type Service struct {
	repo  Store
	tiers TierSyncer
	tx    Transactor
}

func NewService(repo Store, tiers TierSyncer, tx Transactor) *Service {
	return &Service{repo: repo, tiers: tiers, tx: tx}
}

// Credit начисляет баллы, пишет журнал и синхронизирует уровень.
// Возвращает новый баланс. Если транзакция уже открыта в ctx, работает в ней.
func (s *Service) Credit(ctx context.Context, c Credit) (int64, error) {
	if c.Amount <= 0 {
		return 0, common.ErrInvalidPoints
	}

	var balance int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = s.repo.AddPoints(ctx, c.UserID, c.Amount)
		if err != nil {
			return err
		}
		if err := s.repo.AppendLedger(ctx, c); err != nil {
			return err
		}
		_, err = s.tiers.SyncUserTier(ctx, c.UserID, balance)
		return err
	})
	if err != nil {
		return 0, err
	}

	creditedTotal.WithLabelValues(c.Reason).Add(float64(c.Amount))
	log.WithFields(log.Fields{
		"user_id": c.UserID,
		"amount":  c.Amount,
		"reason":  c.Reason,
		"balance": balance,
	}).Info("Начислены баллы")

	return balance, nil
}

// Adjust - ручное начисление администратором.
func (s *Service) Adjust(ctx context.Context, adminID, userID int64, in AdjustInput) (int64, error) {
	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = "Ajuste manual"
	}
	// referencia_id указывает на сущность-источник, у ручной корректировки её нет
	balance, err := s.Credit(ctx, Credit{
		UserID:      userID,
		Amount:      in.Points,
		Reason:      ReasonAdminAdjustment,
		Description: note,
	})
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"admin_id": adminID,
		"user_id":  userID,
		"amount":   in.Points,
	}).Info("Ручная корректировка баллов")
	return balance, nil
}

// History возвращает журнал пользователя, новые записи первыми.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	list, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []LedgerEntry{}
	}
	return list, nil
}
