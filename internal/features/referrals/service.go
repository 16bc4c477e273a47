// Package referrals - service.go начисляет реферальные бонусы.
// Оба бонуса вызываются из одобрения чека и работают в его транзакции.
package referrals

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/features/points"
	"laboratorio3d.cl/rewards/internal/features/users"
)

var hundred = decimal.NewFromInt(100)

type Store interface {
	GetConfig(ctx context.Context) (*Config, error)
	SaveConfig(ctx context.Context, c *Config) error
}

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// ApprovedCounter считает одобренные чеки пользователя.
type ApprovedCounter interface {
	CountApprovedByUser(ctx context.Context, userID int64) (int, error)
}

type PointsCreditor interface {
	Credit(ctx context.Context, c points.Credit) (int64, error)
}

type Service struct {
	repo          Store
	users         UserGetter
	receipts      ApprovedCounter
	points        PointsCreditor
	purchaseFloor decimal.Decimal
	purchaseBonus int64
}

func NewService(repo Store, usersRepo UserGetter, receipts ApprovedCounter, pts PointsCreditor, cfg *config.Config) *Service {
	return &Service{
		repo:          repo,
		users:         usersRepo,
		receipts:      receipts,
		points:        pts,
		purchaseFloor: decimal.NewFromInt(cfg.ReferralPurchaseFloor),
		purchaseBonus: cfg.ReferralPurchaseBonus,
	}
}

func (s *Service) GetConfig(ctx context.Context) (*Config, error) {
	return s.repo.GetConfig(ctx)
}

// UpdateConfig сохраняет настройки: процент 0..100, бонус >= 0.
func (s *Service) UpdateConfig(ctx context.Context, adminID int64, in ConfigInput) (*Config, error) {
	if in.CommissionPercent.IsNegative() || in.CommissionPercent.GreaterThan(hundred) || in.FirstPurchaseBonus < 0 {
		return nil, common.ErrInvalidReferralConfig
	}
	c := Config{
		CommissionPercent:  in.CommissionPercent,
		FirstPurchaseBonus: in.FirstPurchaseBonus,
		Active:             in.Active,
	}
	if err := s.repo.SaveConfig(ctx, &c); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"percent":  c.CommissionPercent.String(),
		"fixed":    c.FirstPurchaseBonus,
		"active":   c.Active,
	}).Info("Обновлены настройки рефералов")
	return &c, nil
}

// ApplyPurchaseBonus начисляет фиксированный бонус пригласившему, указанному в чеке,
// если сумма чека не меньше порога. Возвращает начисленный бонус (0, если условие не выполнено).
func (s *Service) ApplyPurchaseBonus(ctx context.Context, in PurchaseReferral) (int64, error) {
	if in.ReferrerID == nil || *in.ReferrerID == in.UserID || s.purchaseBonus <= 0 {
		return 0, nil
	}
	if in.Amount.LessThan(s.purchaseFloor) {
		return 0, nil
	}

	receiptID := in.ReceiptID
	_, err := s.points.Credit(ctx, points.Credit{
		UserID:      *in.ReferrerID,
		Amount:      s.purchaseBonus,
		Reason:      points.ReasonReferralPurchase,
		Description: fmt.Sprintf("Bono por compra de referido (comprobante #%d)", in.ReceiptID),
		ReferenceID: &receiptID,
	})
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			log.WithField("referrer_id", *in.ReferrerID).Warn("Пригласивший из чека не найден")
			return 0, nil
		}
		return 0, err
	}

	log.WithFields(log.Fields{
		"referrer_id": *in.ReferrerID,
		"receipt_id":  in.ReceiptID,
		"bonus":       s.purchaseBonus,
	}).Info("Начислен бонус за покупку реферала")
	return s.purchaseBonus, nil
}

// ApplyFirstPurchaseBonus начисляет бонус пригласившему при регистрации,
// если это первый одобренный чек пользователя и программа включена.
// Вызывается после отметки чека как одобренного, поэтому счётчик равен 1.
func (s *Service) ApplyFirstPurchaseBonus(ctx context.Context, in FirstPurchase) (int64, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return 0, err
	}
	if !cfg.Active {
		return 0, nil
	}

	approved, err := s.receipts.CountApprovedByUser(ctx, in.UserID)
	if err != nil {
		return 0, err
	}
	if approved != 1 {
		return 0, nil
	}

	u, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return 0, err
	}
	if u.ReferredBy == nil || *u.ReferredBy == u.ID {
		return 0, nil
	}

	bonus := FirstPurchaseBonus(cfg, in.ReceiptPoints)
	if bonus <= 0 {
		return 0, nil
	}

	receiptID := in.ReceiptID
	_, err = s.points.Credit(ctx, points.Credit{
		UserID:      *u.ReferredBy,
		Amount:      bonus,
		Reason:      points.ReasonReferralFirstSale,
		Description: fmt.Sprintf("Bono por primera compra de %s", u.Name),
		ReferenceID: &receiptID,
	})
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"referrer_id": *u.ReferredBy,
		"user_id":     u.ID,
		"bonus":       bonus,
	}).Info("Начислен бонус за первую покупку реферала")
	return bonus, nil
}

// FirstPurchaseBonus: фиксированный бонус, если задан, иначе процент от баллов чека (вниз).
func FirstPurchaseBonus(cfg *Config, receiptPoints int64) int64 {
	if cfg.FirstPurchaseBonus > 0 {
		return cfg.FirstPurchaseBonus
	}
	return decimal.NewFromInt(receiptPoints).
		Mul(cfg.CommissionPercent).
		Div(hundred).
		Floor().
		IntPart()
}
