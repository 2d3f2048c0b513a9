package toolexec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slidecast/internal/services"
)

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestRunCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "echoer", "echo out\necho err >&2\nexit 0\n")

	result, err := NewRunner().Run(context.Background(), Command{Binary: stub})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Fatalf("unexpected stdout: %q", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "err" {
		t.Fatalf("unexpected stderr: %q", result.Stderr)
	}
	if result.ExitCode != 0 {
		t.Fatalf("unexpected exit code: %d", result.ExitCode)
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), Command{Binary: "definitely-not-installed-tool"})
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "failer", "echo conversion error >&2\nexit 3\n")

	result, err := NewRunner().Run(context.Background(), Command{Binary: stub})
	if !errors.Is(err, services.ErrToolExecution) {
		t.Fatalf("expected ErrToolExecution, got %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "conversion error") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "sleeper", "sleep 5\n")

	_, err := NewRunner().Run(context.Background(), Command{Binary: stub, Timeout: 50 * time.Millisecond})
	if !errors.Is(err, services.ErrToolTimeout) {
		t.Fatalf("expected ErrToolTimeout, got %v", err)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), Command{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
