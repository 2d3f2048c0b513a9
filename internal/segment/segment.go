package segment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/media/ffprobe"
	"slidecast/internal/services"
	"slidecast/internal/toolexec"
)

// Input pairs a slide image with its narration audio.
type Input struct {
	SlideNumber int
	ImagePath   string
	AudioPath   string
}

// Piece is one rendered still-image segment.
type Piece struct {
	SlideNumber int
	Path        string
	Duration    float64
}

// Result carries the rendered pieces plus per-slide warnings.
type Result struct {
	Pieces   []Piece
	Warnings []string
}

// Synthesizer renders one video segment per narrated slide: the slide image
// held for the narration's duration, scaled and padded to the canonical
// resolution.
type Synthesizer struct {
	runner toolexec.Runner
	prober *ffprobe.Prober
	tools  config.Tools
	video  config.Video
	logger *slog.Logger
}

// NewSynthesizer builds a Synthesizer. A nil logger disables logging.
func NewSynthesizer(runner toolexec.Runner, prober *ffprobe.Prober, tools config.Tools, video config.Video, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{runner: runner, prober: prober, tools: tools, video: video, logger: logger}
}

// Render produces segments under outDir. A slide whose audio cannot be
// probed or encoded is skipped with a warning; an empty piece set is an
// error.
func (s *Synthesizer) Render(ctx context.Context, inputs []Input, outDir string) (Result, error) {
	result := Result{}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("create segments dir: %w", err)
	}

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		duration, err := s.prober.AudioDuration(ctx, input.AudioPath)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("slide %d: probe audio: %v", input.SlideNumber, err))
			continue
		}

		outPath := filepath.Join(outDir, fmt.Sprintf("segment_%03d.mp4", input.SlideNumber))
		if err := s.renderOne(ctx, input, duration, outPath); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("slide %d: render segment: %v", input.SlideNumber, err))
			continue
		}
		result.Pieces = append(result.Pieces, Piece{
			SlideNumber: input.SlideNumber,
			Path:        outPath,
			Duration:    duration,
		})
		s.logger.Debug("rendered segment",
			logging.FieldSlide, input.SlideNumber, "duration", duration)
	}

	if len(result.Pieces) == 0 {
		return result, services.Wrap(services.ErrNoOutput, "rendering_video", "render segments",
			"no video segments produced", nil)
	}
	return result, nil
}

func (s *Synthesizer) renderOne(ctx context.Context, input Input, duration float64, outPath string) error {
	scale := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		s.video.Width, s.video.Height, s.video.Width, s.video.Height)
	_, err := s.runner.Run(ctx, toolexec.Command{
		Binary: s.tools.FFmpeg,
		Args: []string{
			"-y",
			"-loop", "1",
			"-i", input.ImagePath,
			"-i", input.AudioPath,
			"-c:v", "libx264",
			"-tune", "stillimage",
			"-c:a", "aac",
			"-b:a", s.video.AudioBitrate,
			"-pix_fmt", "yuv420p",
			"-shortest",
			"-t", fmt.Sprintf("%.3f", duration),
			"-vf", scale,
			outPath,
		},
		Timeout: secondsOf(s.tools.RenderTimeout),
	})
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(outPath); statErr != nil {
		return services.Wrap(services.ErrNoOutput, "rendering_video", "render segment",
			"encoder reported success but wrote no segment", statErr)
	}
	return nil
}

func secondsOf(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
