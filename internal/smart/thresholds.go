package smart

const maxRaw = 1<<62 - 1

// Bucket is a raw value range [Low, High] and the annual failure rate
// observed for drives reporting a value inside it.
type Bucket struct {
	Low               int64
	High              int64
	AnnualFailureRate float64
}

// AttrThreshold holds the failure buckets for one ATA attribute.
type AttrThreshold struct {
	Name     string
	Critical bool
	Buckets  []Bucket
}

// thresholds maps ATA attribute IDs to failure-rate buckets derived from
// Backblaze drive statistics.
var thresholds = map[int]AttrThreshold{
	5: {Name: "Reallocated Sectors Count", Critical: true, Buckets: []Bucket{
		{0, 0, 0.025}, {1, 4, 0.027}, {4, 16, 0.075}, {16, 70, 0.236}, {70, maxRaw, 0.50},
	}},
	10: {Name: "Spin Retry Count", Critical: true, Buckets: []Bucket{
		{0, 0, 0.025}, {1, 3, 0.15}, {3, maxRaw, 0.35},
	}},
	187: {Name: "Reported Uncorrectable Errors", Critical: true, Buckets: []Bucket{
		{0, 0, 0.015}, {1, 10, 0.05}, {10, 50, 0.15}, {50, maxRaw, 0.40},
	}},
	188: {Name: "Command Timeout", Critical: true, Buckets: []Bucket{
		{0, 0, 0.015}, {1, 100, 0.03}, {100, 1000, 0.08}, {1000, maxRaw, 0.20},
	}},
	196: {Name: "Reallocate Event Count", Critical: true, Buckets: []Bucket{
		{0, 0, 0.025}, {1, 5, 0.05}, {5, maxRaw, 0.25},
	}},
	197: {Name: "Current Pending Sector Count", Critical: true, Buckets: []Bucket{
		{0, 0, 0.025}, {1, 5, 0.10}, {5, maxRaw, 0.35},
	}},
	198: {Name: "Offline Uncorrectable Sector Count", Critical: true, Buckets: []Bucket{
		{0, 0, 0.025}, {1, 5, 0.10}, {5, maxRaw, 0.35},
	}},
	1: {Name: "Read Error Rate", Buckets: []Bucket{
		{0, 0, 0.02}, {1, 1000, 0.03}, {1000, 100000, 0.08}, {100000, maxRaw, 0.15},
	}},
	9: {Name: "Power-On Hours", Buckets: []Bucket{
		{0, 10000, 0.02}, {10000, 20000, 0.025}, {20000, 40000, 0.03}, {40000, maxRaw, 0.06},
	}},
	194: {Name: "Temperature", Buckets: []Bucket{
		{0, 35, 0.02}, {35, 45, 0.025}, {45, 55, 0.05}, {55, maxRaw, 0.12},
	}},
	199: {Name: "UDMA CRC Error Count", Buckets: []Bucket{
		{0, 0, 0.025}, {1, 100, 0.03}, {100, maxRaw, 0.10},
	}},
}

// LookupThreshold returns the buckets for an attribute ID.
func LookupThreshold(id int) (AttrThreshold, bool) {
	t, ok := thresholds[id]
	return t, ok
}

// FindBucket returns the first bucket containing raw, or nil.
func (t AttrThreshold) FindBucket(raw int64) *Bucket {
	for i := range t.Buckets {
		if b := &t.Buckets[i]; raw >= b.Low && raw <= b.High {
			return b
		}
	}
	return nil
}
