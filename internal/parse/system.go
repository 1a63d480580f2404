package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/darshan-rambhia/whm/internal/model"
)

// Memory parses header-less `free` output ("Mem:  total used ...") into one
// group per line with total, used, free and utilization.
func Memory(text string) ([]model.MemoryGroup, error) {
	groups := []model.MemoryGroup{}
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		perr := func(err error) error {
			return &ParseError{Parser: "memory", Line: i + 1, Text: line, Err: err}
		}

		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, perr(fmt.Errorf("missing name separator"))
		}
		cols := strings.Fields(rest)
		if len(cols) < 2 {
			return nil, perr(ErrShortRow)
		}
		total, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			return nil, perr(fmt.Errorf("%w: total %q", ErrBadNumber, cols[0]))
		}
		used, err := strconv.ParseInt(cols[1], 10, 64)
		if err != nil {
			return nil, perr(fmt.Errorf("%w: used %q", ErrBadNumber, cols[1]))
		}

		util := 0.0
		if total > 0 {
			util = math.Round(float64(used)/float64(total)*100*100) / 100
		}

		var values model.Fields
		values.Set("total", cols[0])
		values.Set("used", cols[1])
		values.Set("free", strconv.FormatInt(total-used, 10))
		values.Set("utilization", strconv.FormatFloat(util, 'f', -1, 64))
		groups = append(groups, model.MemoryGroup{Name: strings.TrimSpace(name), Values: values})
	}
	return groups, nil
}

// cpuLabels maps top's summary labels to report keys, in report order.
var cpuLabels = []struct{ label, key string }{
	{"us", "user"},
	{"sy", "system"},
	{"ni", "niced"},
	{"id", "idle"},
	{"wa", "waiting"},
	{"hi", "hw_interrupt"},
	{"si", "sw_interrupt"},
	{"st", "stolen"},
}

// cpuOffsets are the byte ranges of each value in the C-locale summary line
// "%Cpu(s):  0.3 us,  0.2 sy,  0.0 ni, 99.5 id,  0.0 wa,  0.0 hi,  0.0 si,  0.0 st".
var cpuOffsets = [][2]int{{8, 13}, {17, 22}, {26, 31}, {35, 40}, {44, 49}, {53, 58}, {62, 67}, {71, 76}}

var cpuTokenPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(us|sy|ni|id|wa|hi|si|st)\b`)

// CPU parses the `top -b -n1 | grep Cpu` summary line. Values are located by
// their labels; when the labels are missing the fixed C-locale offsets are
// used instead.
func CPU(line string) (model.Fields, error) {
	line = strings.TrimRight(line, "\r\n")

	found := make(map[string]string, len(cpuLabels))
	for _, m := range cpuTokenPattern.FindAllStringSubmatch(line, -1) {
		if _, dup := found[m[2]]; !dup {
			found[m[2]] = strings.ReplaceAll(m[1], ",", ".")
		}
	}

	var cpu model.Fields
	if len(found) == len(cpuLabels) {
		for _, l := range cpuLabels {
			cpu.Set(l.key, found[l.label])
		}
		return cpu, nil
	}

	if len(line) < cpuOffsets[len(cpuOffsets)-1][1] {
		return model.Fields{}, &ParseError{Parser: "cpu", Line: 1, Text: line, Err: ErrShortRow}
	}
	for i, l := range cpuLabels {
		off := cpuOffsets[i]
		v := strings.ReplaceAll(line[off[0]:off[1]], " ", "")
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return model.Fields{}, &ParseError{Parser: "cpu", Line: 1, Text: line, Err: fmt.Errorf("%w: %s %q", ErrBadNumber, l.key, v)}
		}
		cpu.Set(l.key, v)
	}
	return cpu, nil
}
