// Package prizes - service.go: валидация и управление каталогом.
package prizes

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/config"
)

var imageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type Store interface {
	List(ctx context.Context, activeOnly bool) ([]*Prize, error)
	GetByID(ctx context.Context, id int64) (*Prize, error)
	Create(ctx context.Context, p *Prize) error
	Update(ctx context.Context, id int64, u PrizeUpdate) error
}

type Service struct {
	repo Store
	cfg  *config.Config
}

func NewService(repo Store, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// List: публичный каталог показывает только активные призы.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Prize, error) {
	list, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Prize{}
	}
	return list, nil
}

// GetActive - карточка приза для клиента. Неактивный приз не виден.
func (s *Service) GetActive(ctx context.Context, id int64) (*Prize, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, common.ErrPrizeNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, adminID int64, in PrizeInput) (*Prize, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.PointsRequired <= 0 || in.Stock < 0 {
		return nil, common.ErrInvalidPrize
	}
	if err := s.validateImage(in.Image); err != nil {
		return nil, err
	}

	p := &Prize{
		Name:           in.Name,
		Description:    strings.TrimSpace(in.Description),
		PointsRequired: in.PointsRequired,
		Stock:          in.Stock,
		Active:         true,
		Image:          in.Image,
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if p.Image != nil && *p.Image == "" {
		p.Image = nil
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"prize_id": p.ID,
		"name":     p.Name,
		"points":   p.PointsRequired,
		"stock":    p.Stock,
	}).Info("Создан приз")
	return p, nil
}

func (s *Service) Update(ctx context.Context, adminID, id int64, u PrizeUpdate) (*Prize, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, common.ErrInvalidPrize
		}
		u.Name = &name
	}
	if (u.PointsRequired != nil && *u.PointsRequired <= 0) || (u.Stock != nil && *u.Stock < 0) {
		return nil, common.ErrInvalidPrize
	}
	if err := s.validateImage(u.Image); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, u); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"admin_id": adminID,
		"prize_id": id,
	}).Info("Обновлён приз")
	return s.repo.GetByID(ctx, id)
}

// Deactivate скрывает приз из каталога. Призы не удаляются: на них ссылаются canjes.
func (s *Service) Deactivate(ctx context.Context, adminID, id int64) error {
	inactive := false
	if err := s.repo.Update(ctx, id, PrizeUpdate{Active: &inactive}); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"admin_id": adminID,
		"prize_id": id,
	}).Info("Приз деактивирован")
	return nil
}

func (s *Service) validateImage(image *string) error {
	if image == nil || *image == "" {
		return nil
	}
	return common.ValidateDataURL(*image, s.cfg.MaxUploadBytes, imageTypes...)
}
