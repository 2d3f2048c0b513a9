package pptx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"slidecast/internal/fileutil"
	"slidecast/internal/logging"
	"slidecast/internal/narration"
	"slidecast/internal/services"
)

// EmbedResult reports what an embedding pass produced.
type EmbedResult struct {
	Output         string
	EmbeddedSlides []int
	Warnings       []string
}

// Embedder injects narration audio into deck archives. Slides whose audio
// file or markup part is absent are skipped with a warning; structural damage
// to the package itself is fatal.
type Embedder struct {
	logger *slog.Logger
}

// NewEmbedder builds an Embedder. A nil logger disables logging.
func NewEmbedder(logger *slog.Logger) *Embedder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Embedder{logger: logger}
}

// Embed materializes the deck at deckPath into workDir, attaches each
// narration asset to its slide, and repacks the result at outputPath.
func (e *Embedder) Embed(ctx context.Context, deckPath string, assets []narration.Asset, workDir, outputPath string) (EmbedResult, error) {
	result := EmbedResult{Output: outputPath}

	worktree := filepath.Join(workDir, "deck_worktree")
	workspace, err := Materialize(deckPath, worktree)
	if err != nil {
		return result, err
	}
	defer os.RemoveAll(worktree)

	mediaDir, err := workspace.MediaDir()
	if err != nil {
		return result, services.Wrap(services.ErrPackageCorrupt, "embedding_audio", "prepare media dir", deckPath, err)
	}

	for _, asset := range narration.Sorted(assets) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		embedded, warning, err := e.embedOne(workspace, mediaDir, asset)
		if err != nil {
			return result, err
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
			e.logger.Warn("skipping narration asset", logging.FieldSlide, asset.SlideNumber, "reason", warning)
			continue
		}
		if embedded {
			result.EmbeddedSlides = append(result.EmbeddedSlides, asset.SlideNumber)
		}
	}

	if err := workspace.Repack(outputPath); err != nil {
		return result, services.Wrap(services.ErrPackageCorrupt, "embedding_audio", "repack deck", outputPath, err)
	}

	e.logger.Info("embedded narration audio",
		"deck", filepath.Base(deckPath),
		"embedded", len(result.EmbeddedSlides),
		"skipped", len(result.Warnings))
	return result, nil
}

func (e *Embedder) embedOne(workspace *Workspace, mediaDir string, asset narration.Asset) (bool, string, error) {
	if !fileutil.FileExists(asset.AudioPath) {
		return false, fmt.Sprintf("slide %d: audio file missing: %s", asset.SlideNumber, asset.AudioPath), nil
	}

	slidePath := workspace.SlidePath(asset.SlideNumber)
	slideData, err := os.ReadFile(slidePath)
	if err != nil {
		return false, fmt.Sprintf("slide %d: slide part missing", asset.SlideNumber), nil
	}

	slide, err := ParseSlide(slideData)
	if err != nil {
		return false, "", services.Wrap(services.ErrPackageCorrupt, "embedding_audio",
			fmt.Sprintf("parse slide %d", asset.SlideNumber), slidePath, err)
	}
	if slide.HasAudioShape() {
		return false, fmt.Sprintf("slide %d: narration already embedded", asset.SlideNumber), nil
	}

	rels, err := loadOrCreateRels(workspace, asset.SlideNumber)
	if err != nil {
		return false, "", err
	}

	mediaName := fmt.Sprintf("audio%d%s", asset.SlideNumber, audioExtension(asset.AudioPath))
	if err := fileutil.CopyFile(asset.AudioPath, filepath.Join(mediaDir, mediaName)); err != nil {
		return false, "", services.Wrap(services.ErrPackageCorrupt, "embedding_audio", "copy audio", asset.AudioPath, err)
	}

	relID := rels.NextAudioID(asset.SlideNumber)
	if err := rels.AddAudio(relID, "../media/"+mediaName); err != nil {
		return false, "", services.Wrap(services.ErrPackageCorrupt, "embedding_audio", "register relationship", relID, err)
	}
	if err := slide.AppendAudioShape(asset.SlideNumber, relID); err != nil {
		return false, "", services.Wrap(services.ErrPackageCorrupt, "embedding_audio",
			fmt.Sprintf("inject audio shape on slide %d", asset.SlideNumber), slidePath, err)
	}

	if err := writeDoc(slidePath, slide.Serialize); err != nil {
		return false, "", err
	}
	if err := os.MkdirAll(filepath.Dir(workspace.RelsPath(asset.SlideNumber)), 0o755); err != nil {
		return false, "", fmt.Errorf("create rels dir: %w", err)
	}
	if err := writeDoc(workspace.RelsPath(asset.SlideNumber), rels.Serialize); err != nil {
		return false, "", err
	}
	return true, "", nil
}

func loadOrCreateRels(workspace *Workspace, slideNumber int) (*RelsDoc, error) {
	relsPath := workspace.RelsPath(slideNumber)
	data, err := os.ReadFile(relsPath)
	if os.IsNotExist(err) {
		return NewRels(), nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPackageCorrupt, "embedding_audio", "read relationships", relsPath, err)
	}
	rels, err := ParseRels(data)
	if err != nil {
		return nil, services.Wrap(services.ErrPackageCorrupt, "embedding_audio", "parse relationships", relsPath, err)
	}
	return rels, nil
}

func writeDoc(path string, serialize func() ([]byte, error)) error {
	data, err := serialize()
	if err != nil {
		return services.Wrap(services.ErrPackageCorrupt, "embedding_audio", "serialize part", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write part %s: %w", path, err)
	}
	return nil
}

func audioExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ".mp3"
	}
	return ext
}
