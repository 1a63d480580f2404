package parse

import (
	"fmt"
	"strings"

	"github.com/darshan-rambhia/whm/internal/model"
)

// Sensors parses `sensors -u` output. Devices are separated by blank lines;
// each block is the chip name, an "Adapter: <name>" line, then key: value
// lines. Keys lose their spaces, values lose spaces and colons, and keys
// without a value (feature headers such as "Core 0:") are dropped.
func Sensors(text string) ([]model.SensorDevice, error) {
	devices := []model.SensorDevice{}

	lines := splitLines(text)
	for start := 0; start < len(lines); {
		if strings.TrimSpace(lines[start]) == "" {
			start++
			continue
		}
		end := start
		for end < len(lines) && strings.TrimSpace(lines[end]) != "" {
			end++
		}

		dev, err := parseSensorBlock(lines[start:end], start+1)
		if err != nil {
			return nil, err
		}
		dev.ID = fmt.Sprintf("device%d", len(devices))
		devices = append(devices, dev)
		start = end
	}
	return devices, nil
}

// parseSensorBlock parses one device block; first is the 1-based line number
// of block[0] within the whole input.
func parseSensorBlock(block []string, first int) (model.SensorDevice, error) {
	if len(block) < 2 {
		return model.SensorDevice{}, &ParseError{Parser: "sensors", Line: first, Text: block[0], Err: ErrMalformedBlock}
	}

	dev := model.SensorDevice{PrimaryName: strings.TrimSpace(block[0])}
	if _, after, ok := strings.Cut(block[1], " "); ok {
		dev.SecondaryName = strings.TrimSpace(after)
	}

	for i, line := range block[2:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return model.SensorDevice{}, &ParseError{Parser: "sensors", Line: first + 2 + i, Text: line, Err: ErrMalformedBlock}
		}
		key = stripChars(key, " \t")
		value = stripChars(value, " \t:")
		if value == "" {
			continue
		}
		dev.Values.Set(key, value)
	}
	return dev, nil
}

func stripChars(s, chars string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}
