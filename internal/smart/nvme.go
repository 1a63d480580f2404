package smart

import (
	"errors"
	"strconv"
	"strings"

	"github.com/darshan-rambhia/whm/internal/model"
)

// NVMeHeaders are the keys of each row returned by ParseNVMe.
var NVMeHeaders = []string{"attribute_name", "raw_value"}

// ErrNoNVMeSection is returned when `smartctl -A` output for an NVMe device
// lacks the health information log.
var ErrNoNVMeSection = errors.New("no NVMe health information section")

const nvmeSectionPrefix = "SMART/Health Information"

// ParseNVMe parses the "Label:   value" lines of the NVMe health log that
// `smartctl -A /dev/nvmeX` prints, in output order.
func ParseNVMe(text string) ([]model.Fields, error) {
	var rows []model.Fields
	inSection := false
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, nvmeSectionPrefix) {
			inSection = true
			rows = []model.Fields{}
			continue
		}
		if !inSection || line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		row := model.NewFields(NVMeHeaders...)
		row.Set("attribute_name", strings.TrimSpace(key))
		row.Set("raw_value", strings.TrimSpace(value))
		rows = append(rows, row)
	}
	if rows == nil {
		return nil, ErrNoNVMeSection
	}
	return rows, nil
}

// EvaluateNVMe derives a status bitfield from NVMe health rows: a non-zero
// critical warning fails the device, worn-out endurance or media errors warn.
func EvaluateNVMe(rows []model.Fields) int {
	status := model.StatusPassed
	for _, row := range rows {
		raw := row.Value("raw_value")
		switch strings.ToLower(row.Value("attribute_name")) {
		case "critical warning":
			if nvmeValue(raw) != 0 {
				status |= model.StatusFailedSmart
			}
		case "percentage used":
			if nvmeValue(raw) >= 100 {
				status |= model.StatusWarnScrutiny
			}
		case "media and data integrity errors":
			if nvmeValue(raw) > 0 {
				status |= model.StatusWarnScrutiny
			}
		}
	}
	return status
}

// nvmeValue handles "0x00", "35 Celsius", "100%" and "1,234,567".
func nvmeValue(s string) int64 {
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseInt(hex, 16, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return leadingInt(strings.ReplaceAll(s, ",", ""))
}
