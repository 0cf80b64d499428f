package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/cep-lookup/internal/history"
	"github.com/i474232898/cep-lookup/internal/store"
)

// Scheduler periodically maintains the history storage while the server runs:
// store upkeep (when the driver supports it) and a readability check of the
// persisted history.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	maintainer store.Maintainer
	history    *history.Store
	interval   time.Duration
	logger     *zap.Logger
}

// New creates a new Scheduler. maintainer may be nil.
func New(interval time.Duration, maintainer store.Maintainer, hist *history.Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		maintainer: maintainer,
		history:    hist,
		interval:   interval,
		logger:     logger,
	}
}

// Start schedules the maintenance job and starts the underlying scheduler.
// A zero interval disables it.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: maintenance disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.run(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// run performs one maintenance pass. Failures are logged, never fatal.
func (s *Scheduler) run(ctx context.Context) {
	s.logger.Debug("scheduler: running maintenance job")

	if s.maintainer != nil {
		if err := s.maintainer.Maintain(ctx); err != nil {
			s.logger.Warn("scheduler: store maintenance failed", zap.Error(err))
		}
	}

	if s.history != nil {
		list, err := s.history.Load(ctx)
		if err != nil {
			s.logger.Warn("scheduler: search history check failed",
				zap.String("key", s.history.Key()), zap.Error(err))
			return
		}
		s.logger.Debug("scheduler: search history ok", zap.Int("entries", len(list)))
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
