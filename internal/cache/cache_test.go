package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshan-rambhia/whm/internal/model"
)

func TestNew(t *testing.T) {
	c := New()
	snap := c.Snapshot()
	assert.Nil(t, snap.Report)
	assert.NotNil(t, snap.Recordings)
	assert.NotNil(t, snap.LastRun)
}

func TestSetReport(t *testing.T) {
	c := New()
	_, ok := c.Report()
	assert.False(t, ok)

	c.SetReport(model.Snapshot{ID: "r1", Full: true})
	got, ok := c.Report()
	require.True(t, ok)
	assert.Equal(t, "r1", got.ID)

	c.SetReport(model.Snapshot{ID: "r2"})
	got, _ = c.Report()
	assert.Equal(t, "r2", got.ID)
}

func TestSetRecording(t *testing.T) {
	c := New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.SetRecording(model.Recording{Scope: model.ScopeHours, SnapshotID: "a", RecordedAt: at})
	c.SetRecording(model.Recording{Scope: model.ScopeDays, SnapshotID: "b", RecordedAt: at.Add(time.Hour)})

	r, ok := c.Recording(model.ScopeHours)
	require.True(t, ok)
	assert.Equal(t, "a", r.SnapshotID)
	assert.Equal(t, at, c.LastRun(model.ScopeHours))
	assert.Equal(t, at.Add(time.Hour), c.LastRun(model.ScopeDays))

	_, ok = c.Recording(model.ScopeWeeks)
	assert.False(t, ok)
	assert.True(t, c.LastRun(model.ScopeWeeks).IsZero())
}

func TestSnapshotIsCopy(t *testing.T) {
	c := New()
	c.SetReport(model.Snapshot{ID: "r1"})
	c.SetRecording(model.Recording{Scope: model.ScopeHours})

	snap := c.Snapshot()
	snap.Report.ID = "changed"
	delete(snap.Recordings, model.ScopeHours)

	got, _ := c.Report()
	assert.Equal(t, "r1", got.ID)
	_, ok := c.Recording(model.ScopeHours)
	assert.True(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SetRecording(model.Recording{Scope: model.Scopes[i%3], RecordedAt: time.Unix(int64(i), 0)})
			c.SetReport(model.Snapshot{ID: "x"})
		}()
		go func() {
			defer wg.Done()
			_ = c.Snapshot()
			_, _ = c.Recording(model.ScopeHours)
		}()
	}
	wg.Wait()
	assert.Len(t, c.Snapshot().Recordings, 3)
}
