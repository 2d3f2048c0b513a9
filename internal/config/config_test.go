package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Video.Width != defaultVideoWidth || cfg.Video.Height != defaultVideoHeight {
		t.Fatalf("unexpected default resolution: %dx%d", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Tools.FFmpeg != defaultFFmpeg {
		t.Fatalf("unexpected default ffmpeg command: %q", cfg.Tools.FFmpeg)
	}
	if !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("expected normalized absolute work dir, got %q", cfg.Paths.WorkDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
work_dir = "` + dir + `/scratch"

[tools]
ffmpeg = "/opt/ffmpeg/bin/ffmpeg"
probe_timeout = 15

[video]
dpi = 150
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved existing path %q, got %q (%v)", path, resolved, exists)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("override not applied: %q", cfg.Tools.FFmpeg)
	}
	if cfg.Tools.ProbeTimeout != 15 {
		t.Fatalf("override not applied: %d", cfg.Tools.ProbeTimeout)
	}
	if cfg.Video.DPI != 150 {
		t.Fatalf("override not applied: %d", cfg.Video.DPI)
	}
	if cfg.Video.Width != defaultVideoWidth {
		t.Fatalf("unset fields should keep defaults, got %d", cfg.Video.Width)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Video.Width = 1921
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for odd width")
	}
	if !strings.Contains(err.Error(), "even") {
		t.Fatalf("unexpected validation message: %v", err)
	}

	cfg = Default()
	_ = cfg.Normalize()
	cfg.Tools.ProbeTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero timeout")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[tools]") {
		t.Fatal("sample config missing tools section")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.InboxDir = filepath.Join(base, "inbox")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.InboxDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}
