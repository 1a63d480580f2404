// Package collector assembles host snapshots from OS inspection commands.
package collector

import (
	"context"
	"fmt"
	"regexp"
)

// Commands run against the host. Headers are stripped in the shell so the
// parsers only see data rows.
const (
	cmdSensors     = "sensors -u"
	cmdMemory      = "free | tail -n +2"
	cmdStorage     = "df | tail -n +2"
	cmdCPU         = "top -b -n1 | grep Cpu | tr -d '\\n'"
	cmdUptime      = "uptime -p | cut -c 4- | tr -d '\\n'"
	cmdKernel      = "uname -v | tr -d '\\n'"
	cmdDmesg       = "dmesg | tail -n 200"
	cmdNetwork     = "ifconfig %s | tail -n +4"
	cmdDrives      = "lsblk | tail -n +2"
	cmdProcesses   = "ps -A | tail -n +2"
	cmdSmartHealth = "smartctl -H /dev/%s | grep result"
	cmdSmartATA    = "smartctl -A /dev/%s | tail -n +8 | head -n -1"
	cmdSmartNVMe   = "smartctl -A /dev/%s"
)

// noSensorsExitCode is what `sensors` exits with when the host exposes no
// sensor chips, typically a VM or container.
const noSensorsExitCode = 1

// DemoMode controls whether bundled fixtures replace live command output.
type DemoMode string

const (
	DemoAuto   DemoMode = "auto"   // probe sensors on every collect
	DemoAlways DemoMode = "always" // always use fixtures
	DemoNever  DemoMode = "never"  // never use fixtures
)

// ParseDemoMode converts a config value into a DemoMode. Empty means auto.
func ParseDemoMode(v string) (DemoMode, error) {
	switch DemoMode(v) {
	case "", DemoAuto:
		return DemoAuto, nil
	case DemoAlways, DemoNever:
		return DemoMode(v), nil
	}
	return "", fmt.Errorf("unknown demo mode %q (expected auto, always or never)", v)
}

// deviceName guards names interpolated into smartctl and ifconfig commands.
var deviceName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidDeviceName reports whether name is safe to pass to a shell command.
func ValidDeviceName(name string) bool {
	return deviceName.MatchString(name)
}

// WorkerPool bounds concurrent SMART probes.
type WorkerPool struct {
	sem chan struct{}
}

// NewWorkerPool creates a worker pool with the given max concurrent workers.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{sem: make(chan struct{}, maxWorkers)}
}

// Submit runs fn in the pool, blocking if all workers are busy.
// Returns ctx.Err() if context is cancelled while waiting.
func (p *WorkerPool) Submit(ctx context.Context, fn func()) error {
	select {
	case p.sem <- struct{}{}:
		go func() {
			defer func() { <-p.sem }()
			fn()
		}()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
