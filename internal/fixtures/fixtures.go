// Package fixtures bundles sample command output used in demo mode, when the
// host has no sensors to read (containers, VMs).
package fixtures

import (
	"embed"
	"fmt"
	"io/fs"
)

// Categories of bundled output. Each maps to data/<category>.txt.
const (
	Sensors         = "sensors"
	Storage         = "df"
	Memory          = "free"
	CPU             = "top"
	Drives          = "lsblk"
	SmartHealth     = "smart-health"
	SmartAttributes = "smart-attributes"
	SmartNVMe       = "smart-nvme"
	Dmesg           = "dmesg"
	Processes       = "ps"
	Uptime          = "uptime"
	Kernel          = "uname"
	Network         = "ifconfig"
)

//go:embed data/*.txt
var data embed.FS

// Lookup returns the bundled output for category. When device is non-empty,
// a device-specific file (data/<category>-<device>.txt) is preferred and the
// generic category file is used as the fallback.
func Lookup(category, device string) (string, error) {
	if device != "" {
		if b, err := data.ReadFile("data/" + category + "-" + device + ".txt"); err == nil {
			return string(b), nil
		}
	}
	b, err := data.ReadFile("data/" + category + ".txt")
	if err != nil {
		return "", fmt.Errorf("no fixture for %q: %w", category, err)
	}
	return string(b), nil
}

// MustLookup is Lookup for categories known to be bundled.
func MustLookup(category string) string {
	s, err := Lookup(category, "")
	if err != nil {
		panic(err)
	}
	return s
}

// Names lists the bundled fixture files.
func Names() []string {
	entries, err := fs.ReadDir(data, "data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
