// Package receipts - service.go: загрузка чеков и их проверка администратором.
// Одобрение выполняется в одной транзакции: статус чека, баллы владельцу,
// оба реферальных бонуса. Любая ошибка откатывает всё.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/features/points"
	"laboratorio3d.cl/rewards/internal/features/referrals"
	"laboratorio3d.cl/rewards/internal/features/users"
)

var (
	submittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rewards_receipts_submitted_total",
		Help: "Загруженные чеки",
	})
	reviewedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rewards_receipts_reviewed_total",
		Help: "Проверенные чеки по результату",
	}, []string{"state"})
)

type Store interface {
	Create(ctx context.Context, rc *Receipt) error
	GetByID(ctx context.Context, id int64) (*Receipt, error)
	LockByID(ctx context.Context, id int64) (*Receipt, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Receipt, error)
	List(ctx context.Context, f ListFilter) ([]*Receipt, error)
	MarkReviewed(ctx context.Context, id int64, state string, pts int64, notes *string, adminID int64, at time.Time) error
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
	LockByID(ctx context.Context, id int64) (*users.User, error)
	GetByReferralCode(ctx context.Context, code string) (*users.User, error)
}

type PointsCreditor interface {
	Credit(ctx context.Context, c points.Credit) (int64, error)
}

// ReferralRules - два независимых реферальных бонуса.
type ReferralRules interface {
	ApplyPurchaseBonus(ctx context.Context, in referrals.PurchaseReferral) (int64, error)
	ApplyFirstPurchaseBonus(ctx context.Context, in referrals.FirstPurchase) (int64, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo      Store
	users     UserStore
	points    PointsCreditor
	referrals ReferralRules
	tx        Transactor
	cfg       *config.Config
	now       func() time.Time
}

func NewService(repo Store, usersRepo UserStore, pts PointsCreditor, refs ReferralRules, tx Transactor, cfg *config.Config) *Service {
	return &Service{
		repo:      repo,
		users:     usersRepo,
		points:    pts,
		referrals: refs,
		tx:        tx,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Submit сохраняет чек клиента в состоянии pendiente.
// Реферальный код, если указан, превращается в ID пригласившего.
func (s *Service) Submit(ctx context.Context, userID int64, in SubmitInput) (*Receipt, error) {
	if !in.Amount.IsPositive() {
		return nil, common.ErrInvalidAmount
	}
	if err := validateFile(in.File, s.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}

	rc := &Receipt{
		UserID:      userID,
		Amount:      in.Amount.Round(2),
		Description: strings.TrimSpace(in.Description),
		File:        in.File,
		ProductType: strings.TrimSpace(in.ProductType),
		State:       StatePending,
	}
	if in.SerialNumber != nil {
		if serial := strings.TrimSpace(*in.SerialNumber); serial != "" {
			rc.SerialNumber = &serial
		}
	}

	if code := common.NormalizeReferralCode(in.ReferralCode); code != "" {
		referrer, err := s.users.GetByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, common.ErrUserNotFound) {
				return nil, common.ErrInvalidReferralCode
			}
			return nil, err
		}
		if referrer.ID == userID {
			return nil, common.ErrSelfReferral
		}
		rc.ReferrerID = &referrer.ID
	}

	if err := s.repo.Create(ctx, rc); err != nil {
		return nil, err
	}

	submittedTotal.Inc()
	log.WithFields(log.Fields{
		"receipt_id":  rc.ID,
		"user_id":     userID,
		"amount":      rc.Amount.String(),
		"referrer_id": rc.ReferrerID,
	}).Info("Загружен чек")

	rc.File = ""
	return rc, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]*Receipt, error) {
	list, err := s.repo.ListByUser(ctx, userID, 100)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Receipt{}
	}
	return list, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Receipt, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Receipt{}
	}
	return list, nil
}

// Get возвращает чек с файлом (для просмотра администратором).
func (s *Service) Get(ctx context.Context, id int64) (*Receipt, error) {
	return s.repo.GetByID(ctx, id)
}

// Review одобряет или отклоняет чек.
func (s *Service) Review(ctx context.Context, adminID, receiptID int64, in ReviewInput) (*ReviewResult, error) {
	action, err := parseAction(in.Action)
	if err != nil {
		return nil, err
	}
	var notes *string
	if n := strings.TrimSpace(in.Notes); n != "" {
		notes = &n
	}

	var res *ReviewResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rc, err := s.repo.LockByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if rc.State != StatePending {
			return common.ErrReceiptAlreadyProcessed
		}

		if action == ActionReject {
			res, err = s.reject(ctx, rc, adminID, notes)
		} else {
			res, err = s.approve(ctx, rc, adminID, notes)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	reviewedTotal.WithLabelValues(res.Receipt.State).Inc()
	log.WithFields(log.Fields{
		"receipt_id":     receiptID,
		"admin_id":       adminID,
		"state":          res.Receipt.State,
		"points":         res.PointsAwarded,
		"referral_bonus": res.ReferralBonus,
		"first_purchase": res.FirstPurchaseBonus,
	}).Info("Чек проверен")

	return res, nil
}

func (s *Service) reject(ctx context.Context, rc *Receipt, adminID int64, notes *string) (*ReviewResult, error) {
	at := s.now()
	if err := s.repo.MarkReviewed(ctx, rc.ID, StateRejected, 0, notes, adminID, at); err != nil {
		return nil, err
	}
	stamp(rc, StateRejected, 0, notes, adminID, at)
	return &ReviewResult{Receipt: rc}, nil
}

func (s *Service) approve(ctx context.Context, rc *Receipt, adminID int64, notes *string) (*ReviewResult, error) {
	owner, err := s.lockParticipants(ctx, rc)
	if err != nil {
		return nil, err
	}

	pts := PointsForAmount(rc.Amount, s.cfg.AmountPerPoint)
	at := s.now()
	if err := s.repo.MarkReviewed(ctx, rc.ID, StateApproved, pts, notes, adminID, at); err != nil {
		return nil, err
	}
	stamp(rc, StateApproved, pts, notes, adminID, at)

	res := &ReviewResult{Receipt: rc, PointsAwarded: pts, Balance: owner.Points}
	if pts > 0 {
		receiptID := rc.ID
		res.Balance, err = s.points.Credit(ctx, points.Credit{
			UserID:      rc.UserID,
			Amount:      pts,
			Reason:      points.ReasonReceiptApproved,
			Description: fmt.Sprintf("Comprobante #%d por $%s", rc.ID, common.FormatNumber(rc.Amount.IntPart())),
			ReferenceID: &receiptID,
		})
		if err != nil {
			return nil, err
		}
	}

	res.ReferralBonus, err = s.referrals.ApplyPurchaseBonus(ctx, referrals.PurchaseReferral{
		ReceiptID:  rc.ID,
		UserID:     rc.UserID,
		ReferrerID: rc.ReferrerID,
		Amount:     rc.Amount,
	})
	if err != nil {
		return nil, err
	}

	res.FirstPurchaseBonus, err = s.referrals.ApplyFirstPurchaseBonus(ctx, referrals.FirstPurchase{
		ReceiptID:     rc.ID,
		UserID:        rc.UserID,
		ReceiptPoints: pts,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// lockParticipants блокирует владельца чека и обоих пригласивших по возрастанию id.
// Блокировка владельца сериализует одобрения его чеков. Единый порядок
// исключает взаимную блокировку встречных одобрений (A пригласил B, B пригласил A).
// referido_por не меняется после регистрации, поэтому читается без блокировки.
func (s *Service) lockParticipants(ctx context.Context, rc *Receipt) (*users.User, error) {
	owner, err := s.users.GetByID(ctx, rc.UserID)
	if err != nil {
		return nil, err
	}

	ids := []int64{rc.UserID}
	if rc.ReferrerID != nil {
		ids = append(ids, *rc.ReferrerID)
	}
	if owner.ReferredBy != nil {
		ids = append(ids, *owner.ReferredBy)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		u, err := s.users.LockByID(ctx, id)
		if err != nil {
			// Удалённого пригласившего пропускают сами реферальные правила
			if id != rc.UserID && errors.Is(err, common.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		if id == rc.UserID {
			owner = u
		}
	}
	return owner, nil
}

func stamp(rc *Receipt, state string, pts int64, notes *string, adminID int64, at time.Time) {
	rc.State = state
	rc.PointsAwarded = pts
	rc.AdminNotes = notes
	rc.ValidatedBy = &adminID
	rc.ValidatedAt = &at
}

func parseAction(action string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionApprove, "approve", "aprobado":
		return ActionApprove, nil
	case ActionReject, "reject", "rechazado":
		return ActionReject, nil
	}
	return "", common.ErrInvalidReviewAction
}
