package pptx

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidecast/internal/narration"
	"slidecast/internal/services"
	"slidecast/internal/testsupport"
)

func TestReadInfo(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{
		{Texts: []string{"Intro"}},
		{Texts: []string{"Body"}, Pictures: 1},
		{Texts: []string{"Close"}},
	})

	info, err := ReadInfo(deck)
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if info.SlideCount != 3 {
		t.Fatalf("expected 3 slides, got %d", info.SlideCount)
	}
	if info.SlideWidthEMU != 9144000 || info.SlideHeightEMU != 6858000 {
		t.Fatalf("unexpected slide size: %dx%d", info.SlideWidthEMU, info.SlideHeightEMU)
	}
	if info.HasNotes {
		t.Fatal("deck has no notes slides")
	}
}

func TestReadInfoRejectsEmptyDeck(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "empty.pptx")
	testsupport.BuildDeck(t, deck, nil)
	if _, err := ReadInfo(deck); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestReadInfoCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "garbage.pptx")
	if err := os.WriteFile(deck, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if _, err := ReadInfo(deck); !errors.Is(err, services.ErrPackageCorrupt) {
		t.Fatalf("expected ErrPackageCorrupt, got %v", err)
	}
}

func TestReadSlideShapes(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{
		{Texts: []string{"Title line", "Sub line"}, Pictures: 1},
	})

	shapes, err := ReadSlideShapes(deck, 1)
	if err != nil {
		t.Fatalf("read shapes: %v", err)
	}
	if len(shapes) != 3 {
		t.Fatalf("expected 3 shapes, got %d", len(shapes))
	}

	texts, pictures := 0, 0
	for _, shape := range shapes {
		switch shape.Kind {
		case ShapeText:
			texts++
			if shape.WidthEMU == 0 || shape.HeightEMU == 0 {
				t.Fatalf("text shape missing geometry: %+v", shape)
			}
		case ShapePicture:
			pictures++
		}
	}
	if texts != 2 || pictures != 1 {
		t.Fatalf("expected 2 text + 1 picture, got %d/%d", texts, pictures)
	}
	if shapes[0].Text != "Title line" {
		t.Fatalf("unexpected first shape text: %q", shapes[0].Text)
	}
}

func TestReadSlideShapesMissingSlide(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{{Texts: []string{"only"}}})
	if _, err := ReadSlideShapes(deck, 9); !errors.Is(err, services.ErrAssetMissing) {
		t.Fatalf("expected ErrAssetMissing, got %v", err)
	}
}

func TestNextAudioIDAvoidsCollisions(t *testing.T) {
	rels := NewRels()
	if err := rels.AddAudio("rId101", "../media/existing.mp3"); err != nil {
		t.Fatalf("seed relationship: %v", err)
	}
	if got := rels.NextAudioID(1); got != "rId201" {
		t.Fatalf("expected bumped id rId201, got %s", got)
	}
	if got := rels.NextAudioID(2); got != "rId102" {
		t.Fatalf("expected rId102, got %s", got)
	}
}

func TestEmbedAttachesAudioAndRelationships(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{
		{Texts: []string{"one"}},
		{Texts: []string{"two"}},
	})
	audio1 := testsupport.WriteAudio(t, dir, "slide_1.mp3")
	audio2 := testsupport.WriteAudio(t, dir, "slide_2.wav")

	output := filepath.Join(dir, "narrated.pptx")
	embedder := NewEmbedder(nil)
	result, err := embedder.Embed(context.Background(), deck, []narration.Asset{
		{SlideNumber: 1, AudioPath: audio1, Transcript: "one"},
		{SlideNumber: 2, AudioPath: audio2, Transcript: "two"},
	}, dir, output)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(result.EmbeddedSlides) != 2 || len(result.Warnings) != 0 {
		t.Fatalf("expected 2 embedded slides, got %+v", result)
	}

	reader, err := zip.OpenReader(output)
	if err != nil {
		t.Fatalf("open narrated deck: %v", err)
	}
	defer reader.Close()

	members := map[string]string{}
	for _, member := range reader.File {
		source, err := member.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", member.Name, err)
		}
		data, err := io.ReadAll(source)
		source.Close()
		if err != nil {
			t.Fatalf("read member %s: %v", member.Name, err)
		}
		members[member.Name] = string(data)
	}

	if _, ok := members["ppt/media/audio1.mp3"]; !ok {
		t.Fatalf("missing media member, have %v", memberNames(members))
	}
	if _, ok := members["ppt/media/audio2.wav"]; !ok {
		t.Fatal("missing wav media member")
	}

	slide1 := members["ppt/slides/slide1.xml"]
	if !strings.Contains(slide1, "a:audioFile") || !strings.Contains(slide1, `autoPlay="1"`) {
		t.Fatalf("slide 1 missing audio shape: %s", slide1)
	}
	if !strings.Contains(slide1, `hideInSlideShow="1"`) {
		t.Fatal("audio shape must be hidden during show")
	}

	rels1 := members["ppt/slides/_rels/slide1.xml.rels"]
	if !strings.Contains(rels1, `Id="rId101"`) || !strings.Contains(rels1, "../media/audio1.mp3") {
		t.Fatalf("slide 1 relationships wrong: %s", rels1)
	}
	rels2 := members["ppt/slides/_rels/slide2.xml.rels"]
	if !strings.Contains(rels2, `Id="rId102"`) {
		t.Fatalf("slide 2 relationships wrong: %s", rels2)
	}
}

func TestEmbedIsIdempotentPerSlide(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{{Texts: []string{"one"}}})
	audio := testsupport.WriteAudio(t, dir, "slide_1.mp3")
	assets := []narration.Asset{{SlideNumber: 1, AudioPath: audio, Transcript: "one"}}

	first := filepath.Join(dir, "narrated.pptx")
	embedder := NewEmbedder(nil)
	if _, err := embedder.Embed(context.Background(), deck, assets, dir, first); err != nil {
		t.Fatalf("first embed: %v", err)
	}

	second := filepath.Join(dir, "narrated_again.pptx")
	result, err := embedder.Embed(context.Background(), first, assets, dir, second)
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}
	if len(result.EmbeddedSlides) != 0 {
		t.Fatalf("already-narrated slide must be skipped, got %+v", result.EmbeddedSlides)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "already embedded") {
		t.Fatalf("expected already-embedded warning, got %v", result.Warnings)
	}

	reader, err := zip.OpenReader(second)
	if err != nil {
		t.Fatalf("open re-embedded deck: %v", err)
	}
	defer reader.Close()
	for _, member := range reader.File {
		if member.Name != "ppt/slides/_rels/slide1.xml.rels" {
			continue
		}
		source, err := member.Open()
		if err != nil {
			t.Fatalf("open rels: %v", err)
		}
		data, err := io.ReadAll(source)
		source.Close()
		if err != nil {
			t.Fatalf("read rels: %v", err)
		}
		rels, err := ParseRels(data)
		if err != nil {
			t.Fatalf("parse rels: %v", err)
		}
		targets := rels.AudioTargets()
		if len(targets) != 1 || targets[0] != "../media/audio1.mp3" {
			t.Fatalf("expected single audio target, got %v", targets)
		}
		return
	}
	t.Fatal("slide 1 relationships part missing")
}

func TestEmbedSkipsMissingAssets(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{
		{Texts: []string{"one"}},
		{Texts: []string{"two"}},
	})
	audio1 := testsupport.WriteAudio(t, dir, "slide_1.mp3")

	output := filepath.Join(dir, "narrated.pptx")
	embedder := NewEmbedder(nil)
	result, err := embedder.Embed(context.Background(), deck, []narration.Asset{
		{SlideNumber: 1, AudioPath: audio1},
		{SlideNumber: 2, AudioPath: filepath.Join(dir, "missing.mp3")},
		{SlideNumber: 7, AudioPath: audio1},
	}, dir, output)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(result.EmbeddedSlides) != 1 || result.EmbeddedSlides[0] != 1 {
		t.Fatalf("expected only slide 1 embedded, got %+v", result)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", result.Warnings)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("narrated deck must still be written: %v", err)
	}
}

func TestEmbedHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	testsupport.BuildDeck(t, deck, []testsupport.SlideSpec{{Texts: []string{"one"}}})
	audio := testsupport.WriteAudio(t, dir, "slide_1.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := NewEmbedder(nil)
	_, err := embedder.Embed(ctx, deck, []narration.Asset{{SlideNumber: 1, AudioPath: audio}},
		dir, filepath.Join(dir, "narrated.pptx"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMaterializeRejectsEscapingMembers(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "evil.pptx")
	file, err := os.Create(deck)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	archive := zip.NewWriter(file)
	entry, err := archive.Create("../escape.txt")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := entry.Write([]byte("nope")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	file.Close()

	if _, err := Materialize(deck, filepath.Join(dir, "worktree")); !errors.Is(err, services.ErrPackageCorrupt) {
		t.Fatalf("expected ErrPackageCorrupt, got %v", err)
	}
}

func memberNames(members map[string]string) []string {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	return names
}
