package rasterize

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"slidecast/internal/config"
	"slidecast/internal/testsupport"
	"slidecast/internal/toolexec"
)

func testVideo() config.Video {
	return config.Video{Width: 640, Height: 360, DPI: 200, AudioBitrate: "192k"}
}

func libreOfficeStub(t *testing.T, dir string) string {
	return testsupport.WriteTool(t, dir, "soffice", `
outdir="$5"
deck="$6"
base="$(basename "$deck")"
: > "$outdir/${base%.*}.pdf"
`)
}

func TestConvertToPDF(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "lesson.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{{Texts: []string{"hi"}}})

	tools := config.Tools{LibreOffice: libreOfficeStub(t, dir), ConvertTimeout: 30}
	rasterizer := New(toolexec.NewRunner(), tools, testVideo(), nil)

	pdfPath, err := rasterizer.ConvertToPDF(context.Background(), deck, filepath.Join(dir, "pdf"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if filepath.Base(pdfPath) != "lesson.pdf" {
		t.Fatalf("unexpected pdf name: %s", pdfPath)
	}
	if _, err := os.Stat(pdfPath); err != nil {
		t.Fatalf("pdf not written: %v", err)
	}
}

func TestRasterizePrefersPDFToPPM(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "lesson.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{{Texts: []string{"a"}}, {Texts: []string{"b"}}})

	pdftoppm := testsupport.WriteTool(t, dir, "pdftoppm", `
for arg do prefix="$arg"; done
: > "${prefix}-1.png"
: > "${prefix}-2.png"
`)
	tools := config.Tools{
		LibreOffice:    libreOfficeStub(t, dir),
		PDFToPPM:       pdftoppm,
		ConvertTimeout: 30,
	}
	workDir := filepath.Join(dir, "work")
	rasterizer := New(toolexec.NewRunner(), tools, testVideo(), nil)

	result, err := rasterizer.Rasterize(context.Background(), deck, workDir)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if result.Method != "pdftoppm" {
		t.Fatalf("expected pdftoppm method, got %s", result.Method)
	}
	if len(result.Images) != 2 || result.Images[0].Number != 1 || result.Images[1].Number != 2 {
		t.Fatalf("unexpected images: %+v", result.Images)
	}
	if _, err := os.Stat(filepath.Join(workDir, "pdf")); !os.IsNotExist(err) {
		t.Fatal("intermediate pdf dir must be removed")
	}
}

func TestRasterizeFallsBackToMagick(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "lesson.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{{Texts: []string{"a"}}, {Texts: []string{"b"}}})

	magick := testsupport.WriteTool(t, dir, "magick", `
for arg do out="$arg"; done
dir="$(dirname "$out")"
: > "$dir/slide_000.png"
: > "$dir/slide_001.png"
`)
	tools := config.Tools{
		LibreOffice:    libreOfficeStub(t, dir),
		PDFToPPM:       filepath.Join(dir, "no-such-pdftoppm"),
		Magick:         magick,
		ConvertTimeout: 30,
	}
	rasterizer := New(toolexec.NewRunner(), tools, testVideo(), nil)

	result, err := rasterizer.Rasterize(context.Background(), deck, filepath.Join(dir, "work"))
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if result.Method != "magick" {
		t.Fatalf("expected magick method, got %s", result.Method)
	}
	if len(result.Images) != 2 || result.Images[0].Number != 1 || result.Images[1].Number != 2 {
		t.Fatalf("zero-based pages must renumber from 1: %+v", result.Images)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning about the unavailable rasterizer")
	}
}

func TestRasterizeDiscardsPartialOutputBetweenStrategies(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "lesson.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{
		{Texts: []string{"a"}}, {Texts: []string{"b"}}, {Texts: []string{"c"}},
	})

	// Writes one page, then dies.
	pdftoppm := testsupport.WriteTool(t, dir, "pdftoppm", `
for arg do prefix="$arg"; done
: > "${prefix}-1.png"
exit 1
`)
	magick := testsupport.WriteTool(t, dir, "magick", `
for arg do out="$arg"; done
dir="$(dirname "$out")"
: > "$dir/slide_000.png"
: > "$dir/slide_001.png"
: > "$dir/slide_002.png"
`)
	tools := config.Tools{
		LibreOffice:    libreOfficeStub(t, dir),
		PDFToPPM:       pdftoppm,
		Magick:         magick,
		ConvertTimeout: 30,
	}
	rasterizer := New(toolexec.NewRunner(), tools, testVideo(), nil)

	result, err := rasterizer.Rasterize(context.Background(), deck, filepath.Join(dir, "work"))
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if result.Method != "magick" {
		t.Fatalf("expected magick method, got %s", result.Method)
	}
	if len(result.Images) != 3 {
		t.Fatalf("expected 3 images, got %+v", result.Images)
	}
	seen := make(map[int]string, len(result.Images))
	for _, img := range result.Images {
		if prior, dup := seen[img.Number]; dup {
			t.Fatalf("duplicate slide number %d: %s and %s", img.Number, prior, img.Path)
		}
		seen[img.Number] = img.Path
	}
	for n := 1; n <= 3; n++ {
		if _, ok := seen[n]; !ok {
			t.Fatalf("missing slide number %d: %+v", n, result.Images)
		}
	}
}

// interruptingRunner cancels the shared context when the named binary runs,
// simulating a shutdown arriving mid-conversion.
type interruptingRunner struct {
	inner  toolexec.Runner
	target string
	cancel context.CancelFunc
}

func (r interruptingRunner) Run(ctx context.Context, cmd toolexec.Command) (toolexec.Result, error) {
	if cmd.Binary == r.target {
		r.cancel()
		return toolexec.Result{}, ctx.Err()
	}
	return r.inner.Run(ctx, cmd)
}

func TestRasterizeHonorsCancellationBeforeGeometryFallback(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "lesson.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{{Texts: []string{"a"}}})

	pdftoppm := testsupport.WriteTool(t, dir, "pdftoppm", "")
	tools := config.Tools{
		LibreOffice:    libreOfficeStub(t, dir),
		PDFToPPM:       pdftoppm,
		Magick:         filepath.Join(dir, "no-magick"),
		ConvertTimeout: 30,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := interruptingRunner{inner: toolexec.NewRunner(), target: pdftoppm, cancel: cancel}
	rasterizer := New(runner, tools, testVideo(), nil)

	result, err := rasterizer.Rasterize(ctx, deck, filepath.Join(dir, "work"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Images) != 0 {
		t.Fatalf("cancelled rasterization must not composite slides: %+v", result.Images)
	}
}

func TestRasterizeGeometryFallback(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "lesson.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{
		{Texts: []string{"Welcome to the module", "An overview"}},
		{Texts: []string{"Details"}, Pictures: 1},
		{Texts: []string{"Summary"}},
	})

	tools := config.Tools{
		LibreOffice:    filepath.Join(dir, "no-soffice"),
		PDFToPPM:       filepath.Join(dir, "no-pdftoppm"),
		Magick:         filepath.Join(dir, "no-magick"),
		ConvertTimeout: 30,
	}
	rasterizer := New(toolexec.NewRunner(), tools, testVideo(), nil)

	result, err := rasterizer.Rasterize(context.Background(), deck, filepath.Join(dir, "work"))
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if result.Method != "geometry" {
		t.Fatalf("expected geometry method, got %s", result.Method)
	}
	if len(result.Images) != 3 {
		t.Fatalf("expected 3 slide images, got %d", len(result.Images))
	}

	file, err := os.Open(result.Images[0].Path)
	if err != nil {
		t.Fatalf("open image: %v", err)
	}
	defer file.Close()
	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode image: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 360 {
		t.Fatalf("unexpected image size: %v", bounds)
	}
}

func TestCollectImagesSequentialFallback(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beta.png", "alpha.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	images, warnings := collectImages(dir, false)
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if filepath.Base(images[0].Path) != "alpha.png" || images[0].Number != 1 {
		t.Fatalf("expected lexicographic order, got %+v", images)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected ordering warning, got %v", warnings)
	}
}

func TestTrailingNumber(t *testing.T) {
	cases := []struct {
		name   string
		number int
		ok     bool
	}{
		{"slide-1.png", 1, true},
		{"slide-07.png", 7, true},
		{"slide_003.png", 3, true},
		{"slide.png", 0, false},
	}
	for _, tc := range cases {
		number, ok := trailingNumber(tc.name)
		if number != tc.number || ok != tc.ok {
			t.Fatalf("%s: got (%d,%v), want (%d,%v)", tc.name, number, ok, tc.number, tc.ok)
		}
	}
}
