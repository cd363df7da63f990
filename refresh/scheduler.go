package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/fleet-pairs/store"
)

// Refresher is the part of Orchestrator the Scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) store.AssignmentSet
}

// Scheduler triggers a pass every Interval until its context ends.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	onStart   bool
	// passTimeout bounds a single pass; zero means no extra bound.
	passTimeout time.Duration
	logger      zerolog.Logger
}

func NewScheduler(r Refresher, interval time.Duration, onStart bool, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		refresher:   r,
		interval:    interval,
		onStart:     onStart,
		passTimeout: interval,
		logger:      logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks until ctx is cancelled. A non-positive interval disables the
// periodic trigger; only the start pass, if any, runs.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		if s.onStart {
			s.tick(ctx)
		}
		<-ctx.Done()
		return
	}
	first := s.interval
	if s.onStart {
		first = 0
	}
	t := time.NewTimer(first)
	defer t.Stop()
	s.logger.Info().Dur("interval", s.interval).Bool("on_start", s.onStart).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-t.C:
			s.tick(ctx)
			t.Reset(s.interval)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	cctx := ctx
	if s.passTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.passTimeout)
		defer cancel()
	}
	set := s.refresher.Refresh(cctx)
	s.logger.Debug().Int("pairs", len(set.Pairs)).Time("updated_at", set.UpdatedAt).Msg("scheduled pass done")
}
