package rasterize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"slidecast/internal/pptx"
)

var (
	slideBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	textInk         = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	pictureFill     = color.RGBA{R: 0xd0, G: 0xd4, B: 0xd8, A: 0xff}
	pictureBorder   = color.RGBA{R: 0x90, G: 0x94, B: 0x98, A: 0xff}
)

// renderGeometry composites slide shapes into plain PNGs at the configured
// output resolution. This is the last-resort strategy when no external
// converter is usable; fidelity is approximate but slide count, layout, and
// text content survive.
func (r *Rasterizer) renderGeometry(deckPath, outDir string) ([]SlideImage, error) {
	info, err := pptx.ReadInfo(deckPath)
	if err != nil {
		return nil, err
	}

	width, height := r.video.Width, r.video.Height
	scaleX := float64(width) / float64(info.SlideWidthEMU)
	scaleY := float64(height) / float64(info.SlideHeightEMU)

	images := make([]SlideImage, 0, info.SlideCount)
	for slide := 1; slide <= info.SlideCount; slide++ {
		shapes, err := pptx.ReadSlideShapes(deckPath, slide)
		if err != nil {
			return nil, err
		}

		canvas := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(slideBackground), image.Point{}, draw.Src)

		for _, shape := range shapes {
			box := image.Rect(
				int(float64(shape.LeftEMU)*scaleX),
				int(float64(shape.TopEMU)*scaleY),
				int(float64(shape.LeftEMU+shape.WidthEMU)*scaleX),
				int(float64(shape.TopEMU+shape.HeightEMU)*scaleY),
			).Intersect(canvas.Bounds())
			if box.Empty() {
				continue
			}
			switch shape.Kind {
			case pptx.ShapePicture:
				draw.Draw(canvas, box, image.NewUniform(pictureFill), image.Point{}, draw.Src)
				strokeRect(canvas, box, pictureBorder)
			case pptx.ShapeText:
				drawText(canvas, box, shape.Text)
			}
		}

		path := filepath.Join(outDir, fmt.Sprintf("slide-%d.png", slide))
		if err := writePNG(path, canvas); err != nil {
			return nil, err
		}
		images = append(images, SlideImage{Number: slide, Path: path})
	}
	return images, nil
}

func writePNG(path string, canvas image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create slide image: %w", err)
	}
	if err := png.Encode(file, canvas); err != nil {
		file.Close()
		return fmt.Errorf("encode slide image: %w", err)
	}
	return file.Close()
}

func strokeRect(canvas *image.RGBA, box image.Rectangle, ink color.Color) {
	for x := box.Min.X; x < box.Max.X; x++ {
		canvas.Set(x, box.Min.Y, ink)
		canvas.Set(x, box.Max.Y-1, ink)
	}
	for y := box.Min.Y; y < box.Max.Y; y++ {
		canvas.Set(box.Min.X, y, ink)
		canvas.Set(box.Max.X-1, y, ink)
	}
}

// drawText renders wrapped lines with the built-in bitmap face, clipped to
// the shape box.
func drawText(canvas *image.RGBA, box image.Rectangle, text string) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 2
	maxChars := box.Dx() / face.Advance
	if maxChars < 1 {
		return
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(textInk),
		Face: face,
	}

	y := box.Min.Y + face.Metrics().Ascent.Ceil() + 2
	for _, line := range wrapText(text, maxChars) {
		if y > box.Max.Y {
			break
		}
		drawer.Dot = fixed.P(box.Min.X+2, y)
		drawer.DrawString(line)
		y += lineHeight
	}
}

func wrapText(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= maxChars {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
