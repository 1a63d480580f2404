package parse

import (
	"fmt"
	"strings"

	"github.com/darshan-rambhia/whm/internal/model"
)

// Header sets for the tabular commands the collector runs.
var (
	ProcessHeaders       = []string{"pid", "tty", "time", "cmd"}
	LogicalVolumeHeaders = []string{"filesystem", "k_blocks", "used", "available", "use_percent", "mount_point"}
	SMARTHeaders         = []string{"attr_id", "attribute_name", "flag", "value", "worst", "thresh", "type", "updated", "when_failed", "raw_value"}
)

// Lines parses header-less, space-separated rows into one record per
// non-blank line. Every field is a single token except the last, which runs
// to the end of the line and may contain spaces. A row with fewer fields than
// headers is an ErrShortRow.
func Lines(text string, headers []string) ([]model.Fields, error) {
	if len(headers) == 0 {
		return nil, &ParseError{Parser: "lines", Err: fmt.Errorf("no headers given")}
	}

	records := []model.Fields{}
	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, ok := splitBounded(line, len(headers))
		if !ok || fields[len(fields)-1] == "" {
			return nil, &ParseError{Parser: "lines", Line: i + 1, Text: line, Err: ErrShortRow}
		}
		rec := model.NewFields(headers...)
		for j, h := range headers {
			rec.Set(h, fields[j])
		}
		records = append(records, rec)
	}
	return records, nil
}

// splitBounded splits line into n fields: n-1 whitespace-delimited tokens and
// the trimmed remainder, which may be empty. ok is false when fewer than n-1
// tokens are present.
func splitBounded(line string, n int) (fields []string, ok bool) {
	fields = make([]string, 0, n)
	rest := line
	for len(fields) < n-1 {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return fields, false
		}
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			end = len(rest)
		}
		fields = append(fields, rest[:end])
		rest = rest[end:]
	}
	fields = append(fields, strings.TrimSpace(rest))
	return fields, true
}

// splitLines splits on \n, dropping a trailing \r from each line and the
// empty element after a final newline.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
