package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"slidecast/internal/services"
)

// Workspace is a deck archive fully materialized to a scratch tree. The
// archive is never mutated in place; all edits happen on the tree and a new
// archive is written by Repack.
type Workspace struct {
	Root string
}

// Materialize extracts every member of the deck archive into destDir.
func Materialize(deckPath, destDir string) (*Workspace, error) {
	reader, err := zip.OpenReader(deckPath)
	if err != nil {
		return nil, services.Wrap(services.ErrPackageCorrupt, "pptx", "open archive", deckPath, err)
	}
	defer reader.Close()

	if err := os.RemoveAll(destDir); err != nil {
		return nil, fmt.Errorf("reset worktree: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create worktree: %w", err)
	}

	for _, member := range reader.File {
		target, err := memberPath(destDir, member.Name)
		if err != nil {
			return nil, services.Wrap(services.ErrPackageCorrupt, "pptx", "extract", member.Name, err)
		}
		if member.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("create dir %s: %w", member.Name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create dir for %s: %w", member.Name, err)
		}
		source, err := member.Open()
		if err != nil {
			return nil, services.Wrap(services.ErrPackageCorrupt, "pptx", "extract", member.Name, err)
		}
		dest, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			source.Close()
			return nil, fmt.Errorf("create member %s: %w", member.Name, err)
		}
		if _, err := io.Copy(dest, source); err != nil {
			source.Close()
			dest.Close()
			return nil, fmt.Errorf("extract member %s: %w", member.Name, err)
		}
		source.Close()
		if err := dest.Close(); err != nil {
			return nil, fmt.Errorf("close member %s: %w", member.Name, err)
		}
	}

	return &Workspace{Root: destDir}, nil
}

// SlidePath returns the markup part path for slide n.
func (w *Workspace) SlidePath(n int) string {
	return filepath.Join(w.Root, "ppt", "slides", fmt.Sprintf("slide%d.xml", n))
}

// RelsPath returns the relationship index path for slide n.
func (w *Workspace) RelsPath(n int) string {
	return filepath.Join(w.Root, "ppt", "slides", "_rels", fmt.Sprintf("slide%d.xml.rels", n))
}

// MediaDir returns the package media directory, creating it on first use.
func (w *Workspace) MediaDir() (string, error) {
	dir := filepath.Join(w.Root, "ppt", "media")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	return dir, nil
}

// Repack writes the whole worktree into a new archive at outPath, preserving
// the member set plus any additions.
func (w *Workspace) Repack(outPath string) error {
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	walkErr := filepath.WalkDir(w.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.Root, path)
		if err != nil {
			return err
		}
		writer, err := archive.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		source, err := os.Open(path)
		if err != nil {
			return err
		}
		defer source.Close()
		_, err = io.Copy(writer, source)
		return err
	})
	if walkErr != nil {
		return fmt.Errorf("repack archive: %w", walkErr)
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return file.Close()
}

func memberPath(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("member escapes archive root: %s", name)
	}
	return filepath.Join(root, cleaned), nil
}
