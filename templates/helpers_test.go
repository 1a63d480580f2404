package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshan-rambhia/whm/internal/model"
)

func intPtr(v int) *int { return &v }

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30s", FormatDuration(30*time.Second))
	assert.Equal(t, "5m 30s", FormatDuration(5*time.Minute+30*time.Second))
	assert.Equal(t, "2h 15m", FormatDuration(2*time.Hour+15*time.Minute))
	assert.Equal(t, "3d 4h", FormatDuration(76*time.Hour))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "never", FormatAge(time.Time{}, now))
	assert.Equal(t, "30m 0s ago", FormatAge(now.Add(-30*time.Minute), now))
	assert.Equal(t, "5h 0m ago", FormatAge(now.Add(-5*time.Hour), now))
	assert.Equal(t, "0s ago", FormatAge(now.Add(time.Minute), now))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 2, 16, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-16 14:30", FormatTime(ts))
	assert.Equal(t, "--", FormatTime(time.Time{}))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "status-unknown", StatusClass(nil))
	assert.Equal(t, "status-ok", StatusClass(intPtr(model.StatusPassed)))
	assert.Equal(t, "status-critical", StatusClass(intPtr(model.StatusFailedSmart)))
	assert.Equal(t, "status-critical", StatusClass(intPtr(model.StatusFailedScrutiny)))
	assert.Equal(t, "status-warning", StatusClass(intPtr(model.StatusWarnScrutiny)))
	// Combined flags
	assert.Equal(t, "status-critical", StatusClass(intPtr(model.StatusFailedSmart|model.StatusWarnScrutiny)))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "--", StatusLabel(nil))
	assert.Equal(t, "PASSED", StatusLabel(intPtr(model.StatusPassed)))
	assert.Equal(t, "FAILED", StatusLabel(intPtr(model.StatusFailedSmart|model.StatusFailedScrutiny)))
	assert.Equal(t, "FAILING", StatusLabel(intPtr(model.StatusFailedScrutiny)))
	assert.Equal(t, "WARN", StatusLabel(intPtr(model.StatusWarnScrutiny)))
}

func TestGroupByScope(t *testing.T) {
	got := GroupByScope([]TableEntry{
		{Table: "sto_hours", Group: "sto", Scope: model.ScopeHours},
		{Table: "cpu_hours", Group: "cpu", Scope: model.ScopeHours},
		{Table: "cpu_weeks", Group: "cpu", Scope: model.ScopeWeeks},
		{Table: "legacy", Group: "legacy", Scope: ""},
	})
	require.Len(t, got[model.ScopeHours], 2)
	assert.Equal(t, "cpu", got[model.ScopeHours][0].Group)
	assert.Len(t, got[model.ScopeWeeks], 1)
	assert.Empty(t, got[model.ScopeDays])
	assert.Empty(t, got[""])
}

func TestDisks(t *testing.T) {
	drives := map[string]*model.DriveNode{
		"sdb": {Name: "sdb", Type: model.DriveDisk, Children: map[string]*model.DriveNode{
			"sdb1": {Name: "sdb1", Type: model.DrivePart},
		}},
		"sda": {Name: "sda", Type: model.DriveDisk},
		"sr0": {Name: "sr0", Type: model.DriveROM},
	}
	disks := Disks(drives)
	require.Len(t, disks, 2)
	assert.Equal(t, "sda", disks[0].Name)
	assert.Equal(t, "sdb", disks[1].Name)
	assert.Empty(t, Disks(nil))
}

func TestRecordingSummary(t *testing.T) {
	assert.Equal(t, "not recorded yet", RecordingSummary(model.Recording{}, false))
	r := model.Recording{Demo: true, Tables: []model.TableRecording{{Table: "cpu_hours"}, {Table: "sto_hours", Error: "locked"}}}
	assert.Equal(t, "2 tables, 1 failed (demo)", RecordingSummary(r, true))
}

func TestIndex_Render(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data := IndexData{
		Tables: []TableEntry{
			{Table: "cpu_hours", Group: "cpu", Scope: model.ScopeHours, Columns: 8},
			{Table: "sens_<x>_days", Group: "sens_<x>", Scope: model.ScopeDays, Columns: 2},
		},
		Recordings: map[model.Scope]model.Recording{
			model.ScopeHours: {Scope: model.ScopeHours, RecordedAt: now.Add(-10 * time.Minute), Tables: []model.TableRecording{{Table: "cpu_hours"}}},
		},
		Report: &model.Snapshot{
			CollectedAt: now,
			Drives: map[string]*model.DriveNode{
				"sda": {Name: "sda", Size: "465.8G", Type: model.DriveDisk, SmartHealth: "PASSED", SmartStatus: intPtr(0)},
			},
		},
		Now: now,
	}

	var buf bytes.Buffer
	require.NoError(t, Index(data).Render(context.Background(), &buf))
	out := buf.String()

	assert.Contains(t, out, `<a href="/charts/cpu_hours">cpu</a>`)
	assert.Contains(t, out, "10m 0s ago")
	assert.Contains(t, out, "not recorded yet")
	assert.Contains(t, out, "no chart tables")
	assert.Contains(t, out, "sens_&lt;x&gt;")
	assert.NotContains(t, out, "sens_<x>")
	assert.Contains(t, out, `class="status-ok">PASSED`)
}

func TestIndex_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := Index(IndexData{}).Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}
