package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/darshan-rambhia/whm/internal/fixtures"
	"github.com/darshan-rambhia/whm/internal/model"
	"github.com/darshan-rambhia/whm/internal/parse"
	"github.com/darshan-rambhia/whm/internal/runner"
	"github.com/darshan-rambhia/whm/internal/smart"
)

// Options configures a Collector. Zero values are usable.
type Options struct {
	Pool             *WorkerPool
	Logger           *slog.Logger
	Demo             DemoMode
	NetworkInterface string
	Now              func() time.Time
}

// Collector builds Snapshots by running commands through a runner.Runner.
type Collector struct {
	runner runner.Runner
	pool   *WorkerPool
	logger *slog.Logger
	demo   DemoMode
	iface  string
	now    func() time.Time
}

// New creates a Collector.
func New(r runner.Runner, opts Options) *Collector {
	c := &Collector{
		runner: r,
		pool:   opts.Pool,
		logger: opts.Logger,
		demo:   opts.Demo,
		iface:  opts.NetworkInterface,
		now:    opts.Now,
	}
	if c.pool == nil {
		c.pool = NewWorkerPool(4)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "collector")
	if c.demo == "" {
		c.demo = DemoAuto
	}
	if c.iface == "" {
		c.iface = "eth0"
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// cycle carries per-collect state. Every Collect call builds a fresh one so
// demo detection is never reused across calls.
type cycle struct {
	c      *Collector
	log    *slog.Logger
	demo   bool
	probed *runner.Result // sensors output captured while probing
}

// Collect builds a snapshot. A partial snapshot holds sensors, memory,
// logical volumes and cpu; a full one adds uptime, kernel, dmesg, network,
// drives and processes. A group whose command or parser fails is left
// out and its reason recorded in Snapshot.Errors.
func (c *Collector) Collect(ctx context.Context, full bool, actor string) model.Snapshot {
	snap := model.Snapshot{
		ID:          uuid.NewString(),
		Actor:       actor,
		Full:        full,
		CollectedAt: c.now().UTC(),
	}
	cy := &cycle{c: c, log: c.logger.With("report_id", snap.ID, "actor", actor)}
	cy.log.Info("collecting metrics", "full", full)
	start := time.Now()

	cy.detectDemo(ctx)
	snap.Demo = cy.demo
	if cy.demo {
		cy.log.Info("demo mode, using sample data")
	}

	cy.step(&snap, model.GroupSensors, func() error { return cy.sensors(ctx, &snap) })
	cy.step(&snap, model.GroupMemory, func() error { return cy.memory(ctx, &snap) })
	cy.step(&snap, model.GroupLogicalVolumes, func() error { return cy.logicalVolumes(ctx, &snap) })
	cy.step(&snap, model.GroupCPU, func() error { return cy.cpu(ctx, &snap) })

	if full {
		cy.step(&snap, model.GroupUptime, func() (err error) {
			snap.Uptime, err = cy.text(ctx, cmdUptime, fixtures.Uptime)
			return err
		})
		cy.step(&snap, model.GroupKernel, func() (err error) {
			snap.Kernel, err = cy.text(ctx, cmdKernel, fixtures.Kernel)
			return err
		})
		cy.step(&snap, model.GroupDmesg, func() (err error) {
			snap.Dmesg, err = cy.text(ctx, cmdDmesg, fixtures.Dmesg)
			return err
		})
		cy.step(&snap, model.GroupNetwork, func() error { return cy.network(ctx, &snap) })
		cy.step(&snap, model.GroupDrives, func() error { return cy.drives(ctx, &snap) })
		cy.step(&snap, model.GroupProcesses, func() error { return cy.processes(ctx, &snap) })
	}

	cy.log.Info("report generated",
		"full", full,
		"demo", snap.Demo,
		"groups", len(snap.Groups()),
		"failed", len(snap.Errors),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return snap
}

func (cy *cycle) detectDemo(ctx context.Context) {
	switch cy.c.demo {
	case DemoAlways:
		cy.demo = true
		return
	case DemoNever:
		return
	}
	res := cy.c.runner.Run(ctx, cmdSensors)
	cy.probed = &res
	cy.demo = res.ExitCode == noSensorsExitCode
}

func (cy *cycle) step(snap *model.Snapshot, group string, fn func() error) {
	if err := fn(); err != nil {
		cy.log.Warn("metric group unavailable", "group", group, "error", err)
		snap.Fail(group, err.Error())
	}
}

// output returns fixture text in demo mode and command output otherwise.
// device selects a device-specific fixture when one is bundled.
func (cy *cycle) output(ctx context.Context, command, category, device string) (string, error) {
	if cy.demo {
		return fixtures.Lookup(category, device)
	}
	res := cy.c.runner.Run(ctx, command)
	return checkResult(command, res)
}

func checkResult(command string, res runner.Result) (string, error) {
	if res.Failed() {
		return "", fmt.Errorf("running %q failed", command)
	}
	if !res.OK() {
		return "", fmt.Errorf("%q exited with status %d", command, res.ExitCode)
	}
	return res.Output, nil
}

func (cy *cycle) text(ctx context.Context, command, category string) (*string, error) {
	out, err := cy.output(ctx, command, category, "")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (cy *cycle) sensors(ctx context.Context, snap *model.Snapshot) error {
	var out string
	var err error
	if !cy.demo && cy.probed != nil {
		out, err = checkResult(cmdSensors, *cy.probed)
	} else {
		out, err = cy.output(ctx, cmdSensors, fixtures.Sensors, "")
	}
	if err != nil {
		return err
	}
	devices, err := parse.Sensors(out)
	if err != nil {
		return err
	}
	snap.Sensors = devices
	return nil
}

func (cy *cycle) memory(ctx context.Context, snap *model.Snapshot) error {
	out, err := cy.output(ctx, cmdMemory, fixtures.Memory, "")
	if err != nil {
		return err
	}
	groups, err := parse.Memory(out)
	if err != nil {
		return err
	}
	snap.Memory = groups
	return nil
}

func (cy *cycle) logicalVolumes(ctx context.Context, snap *model.Snapshot) error {
	out, err := cy.output(ctx, cmdStorage, fixtures.Storage, "")
	if err != nil {
		return err
	}
	rows, err := parse.Lines(out, parse.LogicalVolumeHeaders)
	if err != nil {
		return err
	}
	snap.LogicalVolumes = rows
	return nil
}

func (cy *cycle) cpu(ctx context.Context, snap *model.Snapshot) error {
	out, err := cy.output(ctx, cmdCPU, fixtures.CPU, "")
	if err != nil {
		return err
	}
	fields, err := parse.CPU(out)
	if err != nil {
		return err
	}
	snap.CPU = &fields
	return nil
}

func (cy *cycle) network(ctx context.Context, snap *model.Snapshot) error {
	if !ValidDeviceName(cy.c.iface) {
		return fmt.Errorf("invalid network interface %q", cy.c.iface)
	}
	out, err := cy.text(ctx, fmt.Sprintf(cmdNetwork, cy.c.iface), fixtures.Network)
	if err != nil {
		return err
	}
	snap.Network = out
	return nil
}

func (cy *cycle) processes(ctx context.Context, snap *model.Snapshot) error {
	out, err := cy.output(ctx, cmdProcesses, fixtures.Processes, "")
	if err != nil {
		return err
	}
	rows, err := parse.Lines(out, parse.ProcessHeaders)
	if err != nil {
		return err
	}
	snap.Processes = rows
	return nil
}

func (cy *cycle) drives(ctx context.Context, snap *model.Snapshot) error {
	out, err := cy.output(ctx, cmdDrives, fixtures.Drives, "")
	if err != nil {
		return err
	}
	tree, err := parse.DriveTree(out)
	if err != nil {
		return err
	}

	var disks []*model.DriveNode
	for _, name := range model.SortedKeys(tree) {
		tree[name].Walk(func(n *model.DriveNode) {
			if n.Type == model.DriveDisk {
				disks = append(disks, n)
			}
		})
	}

	var wg sync.WaitGroup
	for _, disk := range disks {
		wg.Add(1)
		err := cy.c.pool.Submit(ctx, func() {
			defer wg.Done()
			if err := cy.enrichDisk(ctx, disk); err != nil {
				cy.log.Warn("SMART data unavailable", "device", disk.Name, "error", err)
			}
		})
		if err != nil {
			wg.Done()
			cy.log.Warn("SMART probe not started", "device", disk.Name, "error", err)
		}
	}
	wg.Wait()

	snap.Drives = tree
	return nil
}

// enrichDisk attaches the health verdict, attribute rows and derived status
// to one disk node.
func (cy *cycle) enrichDisk(ctx context.Context, disk *model.DriveNode) error {
	if !ValidDeviceName(disk.Name) {
		return fmt.Errorf("refusing to probe device %q", disk.Name)
	}

	health, err := cy.output(ctx, fmt.Sprintf(cmdSmartHealth, disk.Name), fixtures.SmartHealth, disk.Name)
	if err != nil {
		return fmt.Errorf("reading health: %w", err)
	}
	disk.SmartHealth = smart.ParseHealth(health)

	var status int
	if strings.HasPrefix(disk.Name, "nvme") {
		out, err := cy.output(ctx, fmt.Sprintf(cmdSmartNVMe, disk.Name), fixtures.SmartNVMe, disk.Name)
		if err != nil {
			return fmt.Errorf("reading NVMe log: %w", err)
		}
		rows, err := smart.ParseNVMe(out)
		if err != nil {
			return err
		}
		disk.SmartAttributes = rows
		status = smart.Evaluate(disk.SmartHealth, nil) | smart.EvaluateNVMe(rows)
	} else {
		out, err := cy.output(ctx, fmt.Sprintf(cmdSmartATA, disk.Name), fixtures.SmartAttributes, disk.Name)
		if err != nil {
			return fmt.Errorf("reading attributes: %w", err)
		}
		rows, err := parse.Lines(out, parse.SMARTHeaders)
		if err != nil {
			return err
		}
		disk.SmartAttributes = rows
		attrs, err := smart.Attributes(rows)
		if err != nil {
			return err
		}
		status = smart.Evaluate(disk.SmartHealth, attrs)
	}
	disk.SmartStatus = &status
	return nil
}
