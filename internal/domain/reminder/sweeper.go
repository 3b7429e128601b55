package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically deletes due reminders and queues their medication
// names for delivery. Ticks run sequentially; a slow sweep delays the next
// one rather than overlapping it.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(svc *Service, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{svc: svc, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. Sweep errors are logged and the loop
// keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("reminder sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	n, err := s.svc.SweepDue(sweepCtx, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("reminder sweep failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int("due", n).Msg("queued due medication reminders")
	}
}
