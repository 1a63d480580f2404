package recorder

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/darshan-rambhia/whm/internal/model"
)

// ScopeRecorder records one scope; *Recorder satisfies it.
type ScopeRecorder interface {
	Record(ctx context.Context, scope model.Scope) (model.Recording, error)
}

// Intervals holds the trigger period per scope. A zero interval disables
// that scope's trigger.
type Intervals map[model.Scope]time.Duration

// Scheduler fires one independent trigger per scope.
type Scheduler struct {
	rec       ScopeRecorder
	intervals Intervals
	logger    *slog.Logger
}

// NewScheduler creates a scheduler over rec.
func NewScheduler(rec ScopeRecorder, intervals Intervals, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{rec: rec, intervals: intervals, logger: logger.With("component", "scheduler")}
}

// Run starts the triggers and blocks until ctx is cancelled. The first
// recording of each scope happens one interval after start. Cancellation
// stops new triggers; a recording already running is allowed to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, scope := range model.Scopes {
		interval := s.intervals[scope]
		if interval <= 0 {
			s.logger.Info("trigger disabled", "scope", scope)
			continue
		}
		g.Go(func() error { return s.loop(ctx, scope, interval) })
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, scope model.Scope, interval time.Duration) error {
	s.logger.Info("trigger started", "scope", scope, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("trigger stopped", "scope", scope)
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			if _, err := s.rec.Record(context.WithoutCancel(ctx), scope); err != nil {
				s.logger.Error("recording failed", "scope", scope, "error", err)
			}
		}
	}
}
