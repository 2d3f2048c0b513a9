package rasterize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/toolexec"
)

// SlideImage is one rasterized slide, numbered from 1.
type SlideImage struct {
	Number int
	Path   string
}

// Result carries the rasterized slide set plus per-slide warnings and the
// strategy that produced the images.
type Result struct {
	Images   []SlideImage
	Method   string
	Warnings []string
}

// Rasterizer turns a deck archive into one PNG per slide. It prefers the
// converter chain (document converter to PDF, then a PDF rasterizer) and
// falls back to compositing slide geometry directly when no converter is
// usable.
type Rasterizer struct {
	runner toolexec.Runner
	tools  config.Tools
	video  config.Video
	logger *slog.Logger
}

// New builds a Rasterizer. A nil logger disables logging.
func New(runner toolexec.Runner, tools config.Tools, video config.Video, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Rasterizer{runner: runner, tools: tools, video: video, logger: logger}
}

// Rasterize produces slide images under workDir/slides. The intermediate PDF
// is removed before returning. An empty image set is an error; individual
// slide hiccups surface as warnings.
func (r *Rasterizer) Rasterize(ctx context.Context, deckPath, workDir string) (Result, error) {
	result := Result{}

	imagesDir := filepath.Join(workDir, "slides")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return result, fmt.Errorf("create slides dir: %w", err)
	}

	pdfDir := filepath.Join(workDir, "pdf")
	pdfPath, err := r.ConvertToPDF(ctx, deckPath, pdfDir)
	if err == nil {
		defer os.RemoveAll(pdfDir)
		images, warnings, rasterErr := r.rasterizePDF(ctx, pdfPath, imagesDir)
		result.Warnings = append(result.Warnings, warnings...)
		if rasterErr == nil && len(images.Images) > 0 {
			result.Images = images.Images
			result.Method = images.Method
			return result, nil
		}
		if rasterErr != nil {
			result.Warnings = append(result.Warnings, rasterErr.Error())
		}
	} else {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		result.Warnings = append(result.Warnings, "document conversion failed: "+err.Error())
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	r.logger.Warn("converter chain produced no images, compositing slide geometry",
		"deck", filepath.Base(deckPath))
	if err := resetDir(imagesDir); err != nil {
		return result, err
	}
	images, err := r.renderGeometry(deckPath, imagesDir)
	if err != nil {
		return result, err
	}
	if len(images) == 0 {
		return result, services.Wrap(services.ErrNoOutput, "extracting", "rasterize deck", "no slide images produced", nil)
	}
	result.Images = images
	result.Method = methodGeometry
	return result, nil
}

// ConvertToPDF converts the deck into a PDF in outDir and returns its path.
func (r *Rasterizer) ConvertToPDF(ctx context.Context, deckPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create pdf dir: %w", err)
	}

	_, err := r.runner.Run(ctx, toolexec.Command{
		Binary:  r.tools.LibreOffice,
		Args:    []string{"--headless", "--convert-to", "pdf", "--outdir", outDir, deckPath},
		Timeout: secondsOf(r.tools.ConvertTimeout),
	})
	if err != nil {
		return "", err
	}

	base := filepath.Base(deckPath)
	pdfPath := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", services.Wrap(services.ErrNoOutput, "extracting", "convert deck to pdf",
			"converter reported success but wrote no pdf", err)
	}
	return pdfPath, nil
}

const (
	methodPDFToPPM = "pdftoppm"
	methodMagick   = "magick"
	methodGeometry = "geometry"
)

func (r *Rasterizer) rasterizePDF(ctx context.Context, pdfPath, imagesDir string) (Result, []string, error) {
	var warnings []string

	if toolexec.Available(r.tools.PDFToPPM) {
		if err := resetDir(imagesDir); err != nil {
			return Result{}, warnings, err
		}
		_, err := r.runner.Run(ctx, toolexec.Command{
			Binary: r.tools.PDFToPPM,
			Args: []string{
				"-png",
				"-r", fmt.Sprintf("%d", r.video.DPI),
				"-cropbox",
				pdfPath,
				filepath.Join(imagesDir, "slide"),
			},
			Timeout: secondsOf(r.tools.ConvertTimeout),
		})
		if err == nil {
			images, collectWarnings := collectImages(imagesDir, false)
			warnings = append(warnings, collectWarnings...)
			if len(images) > 0 {
				return Result{Images: images, Method: methodPDFToPPM}, warnings, nil
			}
			warnings = append(warnings, "pdftoppm completed but wrote no images")
		} else {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, warnings, ctxErr
			}
			warnings = append(warnings, "pdftoppm failed: "+err.Error())
		}
	} else {
		warnings = append(warnings, "pdftoppm unavailable")
	}

	if toolexec.Available(r.tools.Magick) {
		if err := resetDir(imagesDir); err != nil {
			return Result{}, warnings, err
		}
		_, err := r.runner.Run(ctx, toolexec.Command{
			Binary: r.tools.Magick,
			Args: []string{
				"-density", fmt.Sprintf("%d", r.video.DPI),
				pdfPath,
				"-quality", "95",
				filepath.Join(imagesDir, "slide_%03d.png"),
			},
			Timeout: secondsOf(r.tools.ConvertTimeout),
		})
		if err == nil {
			images, collectWarnings := collectImages(imagesDir, true)
			warnings = append(warnings, collectWarnings...)
			if len(images) > 0 {
				return Result{Images: images, Method: methodMagick}, warnings, nil
			}
			warnings = append(warnings, "magick completed but wrote no images")
		} else {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, warnings, ctxErr
			}
			warnings = append(warnings, "magick failed: "+err.Error())
		}
	} else {
		warnings = append(warnings, "magick unavailable")
	}

	return Result{}, warnings, services.Wrap(services.ErrNoOutput, "extracting", "rasterize pdf",
		"no pdf rasterizer produced images", nil)
}

// resetDir empties dir so one strategy never collects leftovers from an
// earlier partial attempt; slide numbers in a collected set must be unique.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("reset slides dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("reset slides dir: %w", err)
	}
	return nil
}

func secondsOf(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
