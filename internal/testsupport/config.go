package testsupport

import (
	"path/filepath"
	"testing"

	"slidecast/internal/config"
)

// NewConfig returns a validated config rooted in per-test temp directories.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Paths.InboxDir = filepath.Join(base, "inbox")
	cfg.Paths.OutputDir = filepath.Join(base, "outputs")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}
