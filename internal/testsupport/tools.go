package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTool writes an executable shell-script stub named name into dir and
// returns its path. Tests use these in place of real converters.
func WriteTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write tool stub %s: %v", name, err)
	}
	return path
}

// WriteAudio writes a placeholder narration audio file and returns its path.
// The stub probe tools never decode it, so arbitrary bytes suffice.
func WriteAudio(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("ID3 fake audio payload"), 0o644); err != nil {
		t.Fatalf("write audio stub %s: %v", name, err)
	}
	return path
}
