package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/darshan-rambhia/whm/internal/model"
)

// RetentionSource supplies the maximum row age per scope. It is consulted on
// every sweep so changes take effect without a restart.
type RetentionSource interface {
	MaxAge(scope model.Scope) time.Duration
}

// Pruner periodically sweeps every registered chart table. Tables whose
// group is still being recorded are already pruned on each write; the sweep
// catches tables whose group stopped reporting (a sensor removed, a mount
// gone).
type Pruner struct {
	store     *Store
	retention RetentionSource
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewPruner creates a pruner that sweeps once an hour.
func NewPruner(store *Store, retention RetentionSource, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:     store,
		retention: retention,
		interval:  1 * time.Hour,
		now:       time.Now,
		logger:    logger.With("component", "pruner"),
	}
}

// Run starts the pruner loop. It blocks until the context is cancelled.
func (p *Pruner) Run(ctx context.Context) error {
	p.logger.Info("pruner started", "interval", p.interval)

	// Run once at startup
	p.Prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pruner stopped")
			return ctx.Err()
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune sweeps all registered tables once and returns the rows removed.
func (p *Pruner) Prune(ctx context.Context) int64 {
	schemas, err := p.store.Schemas(ctx)
	if err != nil {
		p.logger.Error("listing chart tables failed", "error", err)
		return 0
	}

	now := p.now()
	var total int64
	for _, s := range schemas {
		if !s.Scope.Valid() {
			p.logger.Warn("chart table has unknown scope", "table", s.Table, "scope", s.Scope)
			continue
		}
		cutoff := now.Add(-p.retention.MaxAge(s.Scope))
		n, err := p.store.PruneBefore(ctx, s.Table, cutoff)
		if err != nil {
			p.logger.Error("pruning failed", "table", s.Table, "error", err)
			continue
		}
		if n > 0 {
			p.logger.Info("pruned old data", "table", s.Table, "scope", s.Scope, "rows", n)
		}
		total += n
	}
	return total
}
