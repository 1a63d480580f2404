package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeHours(t *testing.T) {
	assert.Equal(t, 1, ScopeHours.Hours())
	assert.Equal(t, 24, ScopeDays.Hours())
	assert.Equal(t, 168, ScopeWeeks.Hours())
	assert.Equal(t, 0, Scope("months").Hours())
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("days")
	require.NoError(t, err)
	assert.Equal(t, ScopeDays, s)

	_, err = ParseScope("months")
	assert.Error(t, err)
}

func TestFields_PreservesInsertionOrder(t *testing.T) {
	var f Fields
	f.Set("zeta", "1")
	f.Set("alpha", "2")
	f.Set("mid", "3")
	f.Set("zeta", "4")

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, f.Keys())
	assert.Equal(t, "4", f.Value("zeta"))
	assert.Equal(t, 3, f.Len())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"4","alpha":"2","mid":"3"}`, string(data))
}

func TestFields_CloneIsIndependent(t *testing.T) {
	f := NewFields("a", "b")
	cp := f.Clone()
	cp.Set("a", "changed")
	cp.Set("c", "new")

	assert.Equal(t, "", f.Value("a"))
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 3, cp.Len())
}

func TestFields_ZeroValueMarshals(t *testing.T) {
	data, err := json.Marshal(Fields{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestSnapshotGroups(t *testing.T) {
	cpu := NewFields("user")
	up := "3 days"
	s := Snapshot{
		Memory: []MemoryGroup{},
		CPU:    &cpu,
		Uptime: &up,
	}
	assert.Equal(t, []string{GroupMemory, GroupCPU, GroupUptime}, s.Groups())

	s.Fail(GroupSensors, "exit code 1")
	assert.Equal(t, "exit code 1", s.Errors[GroupSensors])
}

func TestDriveNodeWalk(t *testing.T) {
	root := &DriveNode{Name: "sda", Type: DriveDisk, Children: map[string]*DriveNode{
		"sda2": {Name: "sda2", Type: DrivePart},
		"sda1": {Name: "sda1", Type: DrivePart, Children: map[string]*DriveNode{
			"vg-root": {Name: "vg-root", Type: DriveLVM},
		}},
	}}

	var seen []string
	root.Walk(func(n *DriveNode) { seen = append(seen, n.Name) })
	assert.Equal(t, []string{"sda", "sda1", "vg-root", "sda2"}, seen)
}
