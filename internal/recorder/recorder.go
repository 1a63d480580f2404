// Package recorder samples partial snapshots into per-scope chart tables and
// applies retention.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/darshan-rambhia/whm/internal/cache"
	"github.com/darshan-rambhia/whm/internal/model"
	"github.com/darshan-rambhia/whm/internal/store"
)

// DefaultActor is the actor recorded on scheduled snapshots.
const DefaultActor = "metrics-tracker"

// Reporter produces snapshots; *collector.Collector satisfies it.
type Reporter interface {
	Collect(ctx context.Context, full bool, actor string) model.Snapshot
}

// ChartStore is the subset of *store.Store the recorder writes through.
type ChartStore interface {
	RecordRow(ctx context.Context, row store.ChartRow, cutoff time.Time) (store.RecordResult, error)
}

// Options configures a Recorder. Zero values are usable except Retention.
type Options struct {
	Retention store.RetentionSource
	Cache     *cache.Cache
	Actor     string
	Logger    *slog.Logger
	Now       func() time.Time
}

// Recorder writes one row per metric group per scope.
type Recorder struct {
	reporter  Reporter
	store     ChartStore
	retention store.RetentionSource
	cache     *cache.Cache
	actor     string
	logger    *slog.Logger
	now       func() time.Time

	locks sync.Map // table name -> *sync.Mutex
}

// New creates a Recorder.
func New(reporter Reporter, st ChartStore, opts Options) *Recorder {
	r := &Recorder{
		reporter:  reporter,
		store:     st,
		retention: opts.Retention,
		cache:     opts.Cache,
		actor:     opts.Actor,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if r.actor == "" {
		r.actor = DefaultActor
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "recorder")
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Recorder) tableLock(table string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(table, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Record takes a partial snapshot and appends one row to <group>_<scope> for
// every charted group, then deletes rows older than the scope's retention.
// A failing table does not stop the others; per-table outcomes are in the
// returned Recording. The error is non-nil only for an unknown scope.
func (r *Recorder) Record(ctx context.Context, scope model.Scope) (model.Recording, error) {
	if !scope.Valid() {
		return model.Recording{}, fmt.Errorf("recording: unknown scope %q", scope)
	}

	snap := r.reporter.Collect(ctx, false, r.actor)
	now := r.now()
	cutoff := now.Add(-r.retention.MaxAge(scope))
	log := r.logger.With("scope", scope, "report_id", snap.ID)

	rec := model.Recording{
		Scope:       scope,
		SnapshotID:  snap.ID,
		RecordedAt:  now.UTC(),
		Demo:        snap.Demo,
		Tables:      []model.TableRecording{},
		Unavailable: snap.Errors,
	}
	for _, g := range Flatten(snap) {
		rec.Tables = append(rec.Tables, r.recordGroup(ctx, log, scope, g, now, cutoff))
	}

	log.Info("recorded metrics",
		"tables", len(rec.Tables),
		"failed", len(rec.Failed()),
		"unavailable", len(rec.Unavailable),
		"cutoff", cutoff.UTC().Format(time.RFC3339),
	)
	if r.cache != nil {
		r.cache.SetRecording(rec)
	}
	return rec, nil
}

func (r *Recorder) recordGroup(ctx context.Context, log *slog.Logger, scope model.Scope, g Group, now, cutoff time.Time) model.TableRecording {
	table := store.TableName(g.Name, scope)
	out := model.TableRecording{Table: table, Group: g.Name}
	if len(g.Keys) == 0 {
		out.Error = "group has no values"
		log.Warn("skipping empty metric group", "table", table)
		return out
	}

	mu := r.tableLock(table)
	mu.Lock()
	res, err := r.store.RecordRow(ctx, store.ChartRow{
		Group:  g.Name,
		Scope:  scope,
		Time:   now,
		Keys:   g.Keys,
		Values: g.Values,
	}, cutoff)
	mu.Unlock()

	if err != nil {
		out.Error = err.Error()
		log.Error("recording table failed", "table", table, "error", err)
		return out
	}
	out.Created = res.Created
	out.Pruned = res.Pruned
	out.Missing = res.Missing
	out.Extra = res.Extra
	if len(res.Missing) > 0 || len(res.Extra) > 0 {
		log.Warn("metric group no longer matches table schema",
			"table", table, "missing", res.Missing, "extra", res.Extra)
	}
	log.Debug("recorded table", "table", table, "created", res.Created, "pruned", res.Pruned)
	return out
}
