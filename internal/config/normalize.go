package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands and absolutizes all path fields in place.
func (c *Config) Normalize() error {
	fields := []*string{
		&c.Paths.InboxDir,
		&c.Paths.OutputDir,
		&c.Paths.WorkDir,
		&c.Paths.LogDir,
	}
	for _, field := range fields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("absolutize path %s: %w", trimmed, err)
	}
	return abs, nil
}
