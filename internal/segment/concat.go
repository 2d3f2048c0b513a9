package segment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/toolexec"
)

// Concatenator joins rendered segments into the final module video using
// stream copy, so the join adds no generation loss.
type Concatenator struct {
	runner toolexec.Runner
	tools  config.Tools
	logger *slog.Logger
}

// NewConcatenator builds a Concatenator. A nil logger disables logging.
func NewConcatenator(runner toolexec.Runner, tools config.Tools, logger *slog.Logger) *Concatenator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Concatenator{runner: runner, tools: tools, logger: logger}
}

// Concat joins pieces in slide order into outPath. The concat list file is
// written under workDir and removed afterwards.
func (c *Concatenator) Concat(ctx context.Context, pieces []Piece, workDir, outPath string) error {
	if len(pieces) == 0 {
		return services.Wrap(services.ErrNoOutput, "rendering_video", "concatenate segments",
			"no segments to join", nil)
	}

	listPath := filepath.Join(workDir, "concat_list.txt")
	if err := writeConcatList(listPath, pieces); err != nil {
		return err
	}
	defer os.Remove(listPath)

	_, err := c.runner.Run(ctx, toolexec.Command{
		Binary: c.tools.FFmpeg,
		Args: []string{
			"-y",
			"-f", "concat",
			"-safe", "0",
			"-i", listPath,
			"-c", "copy",
			outPath,
		},
		Timeout: secondsOf(c.tools.ConcatTimeout),
	})
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(outPath); statErr != nil {
		return services.Wrap(services.ErrNoOutput, "rendering_video", "concatenate segments",
			"join reported success but wrote no video", statErr)
	}

	var total float64
	for _, piece := range pieces {
		total += piece.Duration
	}
	c.logger.Info("joined segments", "segments", len(pieces), "total_duration", total)
	return nil
}

func writeConcatList(path string, pieces []Piece) error {
	var builder strings.Builder
	for _, piece := range pieces {
		escaped := strings.ReplaceAll(piece.Path, "'", `'\''`)
		fmt.Fprintf(&builder, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
