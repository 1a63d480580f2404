package recorder

import (
	"strings"

	"github.com/darshan-rambhia/whm/internal/model"
)

// Chart group prefixes.
const (
	sensorPrefix = "sens_"
	memoryPrefix = "mem_"
	cpuGroup     = "cpu"
	storageGroup = "sto"
)

// Group is one metric group flattened into parallel keys and values, in the
// order the keys were encountered.
type Group struct {
	Name   string
	Keys   []string
	Values []string
}

func groupFromFields(name string, f model.Fields) Group {
	g := Group{Name: name, Keys: f.Keys()}
	g.Values = make([]string, len(g.Keys))
	for i, k := range g.Keys {
		g.Values[i] = f.Value(k)
	}
	return g
}

// Flatten projects the charted parts of a snapshot into scalar groups:
// one per sensor device (sens_<name>), one per memory row (mem_<name>), cpu,
// and storage utilization by mount point (sto). Groups missing from the
// snapshot are skipped.
func Flatten(snap model.Snapshot) []Group {
	var groups []Group
	for _, dev := range snap.Sensors {
		groups = append(groups, groupFromFields(sensorPrefix+dev.PrimaryName, dev.Values))
	}
	for _, mem := range snap.Memory {
		groups = append(groups, groupFromFields(memoryPrefix+mem.Name, mem.Values))
	}
	if snap.CPU != nil {
		groups = append(groups, groupFromFields(cpuGroup, *snap.CPU))
	}
	if snap.LogicalVolumes != nil {
		var sto model.Fields
		for _, lv := range snap.LogicalVolumes {
			mount := strings.ReplaceAll(lv.Value("mount_point"), "/", "_")
			sto.Set(mount, strings.TrimSuffix(lv.Value("use_percent"), "%"))
		}
		groups = append(groups, groupFromFields(storageGroup, sto))
	}
	return groups
}
