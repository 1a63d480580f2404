package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/darshan-rambhia/whm/internal/api"
	"github.com/darshan-rambhia/whm/internal/cache"
	"github.com/darshan-rambhia/whm/internal/chart"
	"github.com/darshan-rambhia/whm/internal/collector"
	"github.com/darshan-rambhia/whm/internal/config"
	"github.com/darshan-rambhia/whm/internal/model"
	"github.com/darshan-rambhia/whm/internal/recorder"
	"github.com/darshan-rambhia/whm/internal/runner"
	"github.com/darshan-rambhia/whm/internal/store"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// cliActor is the actor recorded on reports requested from the command line.
const cliActor = "cli"

const usage = `usage: whm [-config path] [-version] [command]

commands:
  serve            run the scheduler, pruner and HTTP server (default)
  report [update]  print a full report, or a partial one with "update"
  record <scope>   record one scope (hours, days or weeks) now
  chart <table>    print a chart table as an HTML page
`

// buildInfo returns version, commit, build time, and VCS details from the
// embedded Go build info. ldflags-injected values take priority.
func buildInfo() (ver, sha, built, dirty string) {
	ver = version
	sha = commit
	built = buildTime
	dirty = "clean"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if sha == "none" {
				sha = s.Value
			}
		case "vcs.time":
			if built == "unknown" {
				built = s.Value
			}
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "dirty"
			}
		}
	}

	return
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one invocation of the binary and returns its exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("whm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "path to whm.yaml config file")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	ver, sha, built, dirty := buildInfo()
	if *showVersion {
		fmt.Fprintf(stdout, "whm %s\n  commit:    %s (%s)\n  built:     %s\n  go:        %s\n  platform:  %s/%s\n",
			ver, sha, dirty, built, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return exitOK
	}

	command, rest := "serve", []string(nil)
	if fs.NArg() > 0 {
		command, rest = fs.Arg(0), fs.Args()[1:]
	}
	if err := checkArgs(command, rest); err != nil {
		fmt.Fprintf(stderr, "error: %s\n\n%s", err, usage)
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigFileNotFound) {
			fmt.Fprintf(stderr, "error: %s\n\n", err)
			fmt.Fprintf(stderr, "Run without -config to use the defaults, or create the file first.\n")
		} else {
			fmt.Fprintf(stderr, "error: loading config (%s): %s\n", *configPath, err)
		}
		return exitError
	}

	logger := newLogger(cfg, stderr)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, configPath: *configPath, logger: logger, stdout: stdout}
	switch command {
	case "serve":
		logger.Info("starting whm",
			"version", ver,
			"commit", sha,
			"built", built,
			"dirty", dirty,
			"go", runtime.Version(),
			"listen", cfg.Listen,
		)
		err = a.serve(ctx)
	case "report":
		err = a.report(ctx, len(rest) == 0)
	case "record":
		err = a.record(ctx, model.Scope(rest[0]))
	case "chart":
		err = a.chart(ctx, rest[0])
	}
	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		return exitError
	}
	return exitOK
}

// checkArgs validates a command and its arguments before anything is opened.
func checkArgs(command string, rest []string) error {
	switch command {
	case "serve":
		if len(rest) != 0 {
			return fmt.Errorf("serve takes no arguments")
		}
	case "report":
		if len(rest) > 1 || (len(rest) == 1 && rest[0] != "update") {
			return fmt.Errorf("report takes only the optional argument \"update\"")
		}
	case "record":
		if len(rest) != 1 {
			return fmt.Errorf("record takes exactly one scope")
		}
		if _, err := model.ParseScope(rest[0]); err != nil {
			return err
		}
	case "chart":
		if len(rest) != 1 {
			return fmt.Errorf("chart takes exactly one table name")
		}
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// app wires the components for one command.
type app struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	stdout     io.Writer
}

func (a *app) runner() (runner.Runner, error) {
	if s := a.cfg.SSH; s != nil {
		r, err := runner.NewSSH(runner.SSHConfig{
			Host:    s.Host,
			Port:    s.Port,
			User:    s.User,
			KeyPath: s.KeyPath,
		}, a.cfg.CommandTimeout.Duration, a.logger)
		if err != nil {
			return nil, fmt.Errorf("creating SSH runner: %w", err)
		}
		return r, nil
	}
	return runner.NewLocal(a.cfg.CommandTimeout.Duration, a.logger), nil
}

func (a *app) collector() (*collector.Collector, error) {
	r, err := a.runner()
	if err != nil {
		return nil, err
	}
	demo, err := collector.ParseDemoMode(a.cfg.Demo)
	if err != nil {
		return nil, err
	}
	return collector.New(r, collector.Options{
		Pool:             collector.NewWorkerPool(a.cfg.WorkerPoolSize),
		Logger:           a.logger,
		Demo:             demo,
		NetworkInterface: a.cfg.NetworkInterface,
	}), nil
}

func (a *app) retention() *config.RetentionFile {
	return config.NewRetentionFile(a.configPath, a.logger)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) serve(ctx context.Context) error {
	coll, err := a.collector()
	if err != nil {
		return err
	}
	st, err := store.New(a.cfg.DBPath, a.logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	c := cache.New()
	retention := a.retention()

	rec := recorder.New(coll, st, recorder.Options{
		Retention: retention,
		Cache:     c,
		Logger:    a.logger,
	})
	scheduler := recorder.NewScheduler(rec, recorder.Intervals{
		model.ScopeHours: a.cfg.Schedule.Hours.Duration,
		model.ScopeDays:  a.cfg.Schedule.Days.Duration,
		model.ScopeWeeks: a.cfg.Schedule.Weeks.Duration,
	}, a.logger)
	pruner := store.NewPruner(st, retention, a.logger)
	server := api.NewServer(a.cfg.Listen, coll, c, st, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return scheduler.Run(ctx) })
	g.Go(func() error { return pruner.Run(ctx) })
	g.Go(func() error { return server.Run(ctx) })

	a.logger.Info("all components started",
		"db_path", a.cfg.DBPath,
		"demo", a.cfg.Demo,
		"remote", a.cfg.SSH != nil,
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("whm stopped gracefully")
	return nil
}

func (a *app) report(ctx context.Context, full bool) error {
	coll, err := a.collector()
	if err != nil {
		return err
	}
	return a.printJSON(coll.Collect(ctx, full, cliActor))
}

func (a *app) record(ctx context.Context, scope model.Scope) error {
	coll, err := a.collector()
	if err != nil {
		return err
	}
	st, err := store.New(a.cfg.DBPath, a.logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	rec := recorder.New(coll, st, recorder.Options{Retention: a.retention(), Logger: a.logger})
	out, err := rec.Record(ctx, scope)
	if err != nil {
		return err
	}
	return a.printJSON(out)
}

func (a *app) chart(ctx context.Context, table string) error {
	st, err := store.New(a.cfg.DBPath, a.logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	series, err := st.QueryRows(ctx, table, time.Time{})
	if err != nil {
		return err
	}
	return chart.Render(a.stdout, series)
}
