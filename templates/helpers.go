// Package templates provides the HTML components and their formatting helpers.
package templates

import (
	"fmt"
	"sort"
	"time"

	"github.com/darshan-rambhia/whm/internal/model"
)

// FormatDuration formats a duration into human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 48*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dd %dh", int(d.Hours())/24, int(d.Hours())%24)
}

// FormatAge formats how long before now t happened, or "never" for the zero time.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	age := now.Sub(t)
	if age < 0 {
		age = 0
	}
	return FormatDuration(age) + " ago"
}

// FormatTime formats t in UTC.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// StatusClass returns a CSS class for a SMART status bitfield.
func StatusClass(status *int) string {
	switch {
	case status == nil:
		return "status-unknown"
	case *status&(model.StatusFailedSmart|model.StatusFailedScrutiny) != 0:
		return "status-critical"
	case *status&model.StatusWarnScrutiny != 0:
		return "status-warning"
	}
	return "status-ok"
}

// StatusLabel returns a short label for a SMART status bitfield.
func StatusLabel(status *int) string {
	switch {
	case status == nil:
		return "--"
	case *status&model.StatusFailedSmart != 0:
		return "FAILED"
	case *status&model.StatusFailedScrutiny != 0:
		return "FAILING"
	case *status&model.StatusWarnScrutiny != 0:
		return "WARN"
	}
	return "PASSED"
}

// TableEntry is one chart table on the index page.
type TableEntry struct {
	Table   string
	Group   string
	Scope   model.Scope
	Columns int
}

// GroupByScope buckets entries by scope in scope order, each sorted by group.
// Entries with an unknown scope are dropped.
func GroupByScope(entries []TableEntry) map[model.Scope][]TableEntry {
	out := make(map[model.Scope][]TableEntry, len(model.Scopes))
	for _, e := range entries {
		if !e.Scope.Valid() {
			continue
		}
		out[e.Scope] = append(out[e.Scope], e)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].Group < list[j].Group })
	}
	return out
}

// Disks returns the disk nodes of a drive tree, sorted by name.
func Disks(drives map[string]*model.DriveNode) []*model.DriveNode {
	var list []*model.DriveNode
	for _, name := range model.SortedKeys(drives) {
		drives[name].Walk(func(n *model.DriveNode) {
			if n.Type == model.DriveDisk {
				list = append(list, n)
			}
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// RecordingSummary describes a scope's last recording in a few words.
func RecordingSummary(r model.Recording, ok bool) string {
	if !ok {
		return "not recorded yet"
	}
	failed := len(r.Failed())
	s := fmt.Sprintf("%d tables", len(r.Tables))
	if failed > 0 {
		s += fmt.Sprintf(", %d failed", failed)
	}
	if r.Demo {
		s += " (demo)"
	}
	return s
}
