// Package cache keeps the most recent report and recording outcomes in memory.
package cache

import (
	"maps"
	"sync"
	"time"

	"github.com/darshan-rambhia/whm/internal/model"
)

// Cache is a thread-safe in-memory store. Values handed to it must not be
// modified by the caller afterwards.
type Cache struct {
	mu sync.RWMutex

	report     *model.Snapshot
	recordings map[model.Scope]model.Recording
	lastRun    map[model.Scope]time.Time
}

// CacheSnapshot is a read-only copy of the cache state.
type CacheSnapshot struct {
	Report     *model.Snapshot
	Recordings map[model.Scope]model.Recording
	LastRun    map[model.Scope]time.Time
}

// New returns an initialized Cache.
func New() *Cache {
	return &Cache{
		recordings: make(map[model.Scope]model.Recording),
		lastRun:    make(map[model.Scope]time.Time),
	}
}

// Snapshot returns a copy of the cache contents.
func (c *Cache) Snapshot() CacheSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := CacheSnapshot{
		Recordings: maps.Clone(c.recordings),
		LastRun:    maps.Clone(c.lastRun),
	}
	if c.report != nil {
		cp := *c.report
		snap.Report = &cp
	}
	return snap
}

// SetReport stores the latest full report.
func (c *Cache) SetReport(s model.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = &s
}

// Report returns the latest full report, if any.
func (c *Cache) Report() (model.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil {
		return model.Snapshot{}, false
	}
	return *c.report, true
}

// SetRecording stores the outcome of a recording for its scope.
func (c *Cache) SetRecording(r model.Recording) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordings[r.Scope] = r
	c.lastRun[r.Scope] = r.RecordedAt
}

// Recording returns the last recording outcome for scope.
func (c *Cache) Recording(scope model.Scope) (model.Recording, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.recordings[scope]
	return r, ok
}

// LastRun returns when scope was last recorded, or the zero time.
func (c *Cache) LastRun(scope model.Scope) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRun[scope]
}
