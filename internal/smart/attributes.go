// Package smart turns smartctl text output into health strings, typed
// attributes and an aggregate status.
package smart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/darshan-rambhia/whm/internal/model"
)

// ParseHealth extracts the verdict from the `smartctl -H` result line,
// e.g. "SMART overall-health self-assessment test result: PASSED" -> "PASSED".
func ParseHealth(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.LastIndex(text, ": "); i >= 0 {
		return strings.TrimSpace(text[i+2:])
	}
	return text
}

// Attributes converts parsed `smartctl -A` rows into typed attributes.
// Rows are expected to carry the parse.SMARTHeaders keys.
func Attributes(rows []model.Fields) ([]model.SMARTAttribute, error) {
	attrs := make([]model.SMARTAttribute, 0, len(rows))
	for i, row := range rows {
		id, err := strconv.Atoi(row.Value("attr_id"))
		if err != nil {
			return nil, fmt.Errorf("attribute %d: parsing id %q: %w", i, row.Value("attr_id"), err)
		}
		raw := row.Value("raw_value")
		attrs = append(attrs, model.SMARTAttribute{
			ID:        id,
			Name:      row.Value("attribute_name"),
			Value:     leadingInt(row.Value("value")),
			Worst:     leadingInt(row.Value("worst")),
			Threshold: leadingInt(row.Value("thresh")),
			RawValue:  leadingInt(raw),
			RawString: raw,
		})
	}
	return attrs, nil
}

// leadingInt extracts the leading integer from a string like "40 (Min/Max 25/55)".
// Anything unparseable is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	val, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return val
}
