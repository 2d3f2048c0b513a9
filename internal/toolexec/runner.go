package toolexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"slidecast/internal/services"
)

// Command describes a single external tool invocation.
type Command struct {
	Binary  string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Result captures the outcome of a completed invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts command execution for testability.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// NewRunner returns the default process-backed runner.
func NewRunner() Runner {
	return commandRunner{}
}

type commandRunner struct{}

// Run executes the command with a bounded timeout, capturing stdout and
// stderr. Errors are tagged with the services taxonomy: a missing binary maps
// to ErrToolUnavailable, an exceeded deadline to ErrToolTimeout, and a
// non-zero exit to ErrToolExecution.
func (commandRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	binary := strings.TrimSpace(cmd.Binary)
	if binary == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "toolexec", "run", "command not configured", nil)
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{}, services.Wrap(services.ErrToolUnavailable, "toolexec", "run", "binary "+binary+" not found", err)
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(runCtx, resolved, cmd.Args...)
	if cmd.Dir != "" {
		proc.Dir = cmd.Dir
	}
	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	runErr := proc.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if proc.ProcessState != nil {
		result.ExitCode = proc.ProcessState.ExitCode()
	}
	if runErr == nil {
		return result, nil
	}

	if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return result, services.Wrap(services.ErrToolTimeout, "toolexec", binary, "invocation exceeded timeout", runErr)
	}
	detail := stderrTail(result.Stderr)
	if detail == "" {
		detail = runErr.Error()
	}
	return result, services.Wrap(services.ErrToolExecution, "toolexec", binary, detail, runErr)
}

// stderrTail keeps the last few stderr lines so error messages stay readable
// for chatty converters.
func stderrTail(stderr string) string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
