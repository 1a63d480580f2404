// Package runner executes shell commands and captures their output.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

// FailedOutput is returned as output when a command could not be executed at all.
const FailedOutput = "failed"

// Result is the outcome of one command.
type Result struct {
	Output   string
	ExitCode int
}

// Failed reports whether the command could not be spawned or timed out.
func (r Result) Failed() bool {
	return r.ExitCode == -1 && r.Output == FailedOutput
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes a shell command line. Implementations never return an
// error: a command that cannot be run yields FailedOutput and exit code -1.
type Runner interface {
	Run(ctx context.Context, command string) Result
}

// Local runs commands through sh -c on this host.
type Local struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewLocal creates a runner with a per-command timeout. A zero timeout disables it.
func NewLocal(timeout time.Duration, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{timeout: timeout, logger: logger.With("component", "runner")}
}

// Run executes command and returns its combined stdout and stderr.
func (l *Local) Run(ctx context.Context, command string) Result {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.WaitDelay = time.Second // don't hang on grandchildren holding the pipe
	out, err := cmd.CombinedOutput()
	res := Result{Output: string(out)}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			l.logger.Error("command timed out", "command", command, "timeout", l.timeout, "error", ctx.Err())
			return Result{Output: FailedOutput, ExitCode: -1}
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			l.logger.Error("host failed to run command", "command", command, "error", err)
			return Result{Output: FailedOutput, ExitCode: -1}
		}
	}

	logOutcome(l.logger, command, res, time.Since(start))
	return res
}

func logOutcome(logger *slog.Logger, command string, res Result, took time.Duration) {
	if res.OK() {
		logger.Debug("ran command", "command", command, "duration", took)
		return
	}
	logger.Warn("command exited with an issue", "command", command, "exit_code", res.ExitCode, "duration", took)
}
