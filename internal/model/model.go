// Package model defines all shared domain types for WHM.
package model

import (
	"fmt"
	"time"
)

// Scope is the time granularity at which metrics are sampled and retained.
type Scope string

const (
	ScopeHours Scope = "hours"
	ScopeDays  Scope = "days"
	ScopeWeeks Scope = "weeks"
)

// Scopes lists every scope in ascending granularity.
var Scopes = []Scope{ScopeHours, ScopeDays, ScopeWeeks}

// Hours returns how many hours one unit of the scope spans.
func (s Scope) Hours() int {
	switch s {
	case ScopeHours:
		return 1
	case ScopeDays:
		return 24
	case ScopeWeeks:
		return 168
	}
	return 0
}

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	return s.Hours() > 0
}

// ParseScope converts a string into a Scope.
func ParseScope(v string) (Scope, error) {
	s := Scope(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown scope %q (expected hours, days or weeks)", v)
	}
	return s, nil
}

// Snapshot is one collection cycle. Groups that failed to collect are left
// nil and their reason is kept in Errors.
type Snapshot struct {
	ID          string    `json:"id"`
	Actor       string    `json:"actor"`
	Full        bool      `json:"full_report"`
	Demo        bool      `json:"demo"`
	CollectedAt time.Time `json:"collected_at"`

	Sensors        []SensorDevice        `json:"sensors,omitempty"`
	Memory         []MemoryGroup         `json:"memory,omitempty"`
	LogicalVolumes []Fields              `json:"logical_volumes,omitempty"`
	CPU            *Fields               `json:"cpu,omitempty"`
	Uptime         *string               `json:"uptime,omitempty"`
	Kernel         *string               `json:"os,omitempty"`
	Dmesg          *string               `json:"dmesg,omitempty"`
	Network        *string               `json:"network,omitempty"`
	Drives         map[string]*DriveNode `json:"drives,omitempty"`
	Processes      []Fields              `json:"processes,omitempty"`

	Errors map[string]string `json:"errors,omitempty"`
}

// Group keys used in Snapshot and Snapshot.Errors.
const (
	GroupSensors        = "sensors"
	GroupMemory         = "memory"
	GroupLogicalVolumes = "logical_volumes"
	GroupCPU            = "cpu"
	GroupUptime         = "uptime"
	GroupKernel         = "os"
	GroupDmesg          = "dmesg"
	GroupNetwork        = "network"
	GroupDrives         = "drives"
	GroupProcesses      = "processes"
)

// Groups returns the keys of the metric groups present in the snapshot, in
// collection order.
func (s *Snapshot) Groups() []string {
	var keys []string
	add := func(key string, present bool) {
		if present {
			keys = append(keys, key)
		}
	}
	add(GroupSensors, s.Sensors != nil)
	add(GroupMemory, s.Memory != nil)
	add(GroupLogicalVolumes, s.LogicalVolumes != nil)
	add(GroupCPU, s.CPU != nil)
	add(GroupUptime, s.Uptime != nil)
	add(GroupKernel, s.Kernel != nil)
	add(GroupDmesg, s.Dmesg != nil)
	add(GroupNetwork, s.Network != nil)
	add(GroupDrives, s.Drives != nil)
	add(GroupProcesses, s.Processes != nil)
	return keys
}

// Fail records why a group is missing from the snapshot.
func (s *Snapshot) Fail(group string, reason string) {
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	s.Errors[group] = reason
}

// SensorDevice is one blank-line delimited block of sensor output.
type SensorDevice struct {
	ID            string `json:"id"` // positional: device0, device1, ...
	PrimaryName   string `json:"name0"`
	SecondaryName string `json:"name1"`
	Values        Fields `json:"values"`
}

// MemoryGroup is one row of memory usage (Mem, Swap, ...).
type MemoryGroup struct {
	Name   string `json:"name"`
	Values Fields `json:"values"` // total, used, free, utilization
}

// Drive types reported by lsblk.
const (
	DriveDisk = "disk"
	DrivePart = "part"
	DriveLVM  = "lvm"
	DriveROM  = "rom"
)

// DriveNode is a block device and the devices it owns.
type DriveNode struct {
	Name            string                `json:"name"`
	Size            string                `json:"size"`
	Type            string                `json:"type"`
	Mount           string                `json:"mount,omitempty"`
	Children        map[string]*DriveNode `json:"children,omitempty"`
	SmartHealth     string                `json:"smart_health,omitempty"`
	SmartAttributes []Fields              `json:"smart_attributes,omitempty"`
	SmartStatus     *int                  `json:"smart_status,omitempty"`
}

// Walk calls fn for n and every descendant, depth first.
func (n *DriveNode) Walk(fn func(*DriveNode)) {
	fn(n)
	for _, name := range SortedKeys(n.Children) {
		n.Children[name].Walk(fn)
	}
}

// SMART status bitfield values.
const (
	StatusPassed         = 0
	StatusFailedSmart    = 1
	StatusWarnScrutiny   = 2
	StatusFailedScrutiny = 4
)

// SMARTAttribute is a typed view of one smartctl -A row.
type SMARTAttribute struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Value       int64    `json:"value"`
	Worst       int64    `json:"worst"`
	Threshold   int64    `json:"threshold"`
	RawValue    int64    `json:"raw_value"`
	RawString   string   `json:"raw_string"`
	Status      int      `json:"status"`
	FailureRate *float64 `json:"failure_rate,omitempty"`
}

// ChartPoint is one row of a chart table.
type ChartPoint struct {
	Time   int64      `json:"time"`
	Values []*float64 `json:"values"`
}

// ChartSeries is the contents of a chart table in column order.
type ChartSeries struct {
	Table   string       `json:"table"`
	Columns []string     `json:"columns"`
	Points  []ChartPoint `json:"points"`
}

// Recording is the outcome of recording one scope.
type Recording struct {
	Scope       Scope             `json:"scope"`
	SnapshotID  string            `json:"snapshot_id"`
	RecordedAt  time.Time         `json:"recorded_at"`
	Demo        bool              `json:"demo"`
	Tables      []TableRecording  `json:"tables"`
	Unavailable map[string]string `json:"unavailable,omitempty"` // snapshot groups that could not be collected
}

// Failed returns the tables whose write failed.
func (r Recording) Failed() []TableRecording {
	var out []TableRecording
	for _, t := range r.Tables {
		if t.Error != "" {
			out = append(out, t)
		}
	}
	return out
}

// TableRecording is the outcome of writing one chart table.
type TableRecording struct {
	Table   string   `json:"table"`
	Group   string   `json:"group"`
	Created bool     `json:"created,omitempty"`
	Pruned  int64    `json:"pruned"`
	Missing []string `json:"missing,omitempty"`
	Extra   []string `json:"extra,omitempty"`
	Error   string   `json:"error,omitempty"`
}
