// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасная очистка истёкших сессий
// и старых попыток входа.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const purgeSpec = "15 * * * *"

// SessionPurger - удаление истёкших сессий.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron   *cron.Cron
	purger SessionPurger
}

// NewScheduler создаёт планировщик с часовым поясом America/Santiago.
func NewScheduler(purger SessionPurger) *Scheduler {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить America/Santiago, используем UTC-3")
		loc = time.FixedZone("CLT", -3*60*60)
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		purger: purger,
	}
}

// Start регистрирует задачи и запускает cron.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(purgeSpec, func() { s.purge(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	log.Info("Планировщик задач запущен")
	return nil
}

func (s *Scheduler) purge(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	log.Debug("[CRON] Очистка истёкших сессий")
	if err := s.purger.PurgeExpired(ctx); err != nil {
		log.WithError(err).Error("[CRON] Ошибка очистки сессий")
	}
}

// Stop дожидается завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
