package pipeline

import (
	"context"
	"strings"

	"slidecast/internal/narration"
	"slidecast/internal/pptx"
	"slidecast/internal/services"
)

// SlideContent is the extracted text of one slide, passed through to the
// transcript collaborators unmodified.
type SlideContent struct {
	SlideNumber int
	Text        string
}

// ContentExtractor produces per-slide text from a deck.
type ContentExtractor interface {
	Extract(ctx context.Context, deckPath string) ([]SlideContent, error)
}

// TranscriptGenerator drafts and refines narration scripts. Both phases are
// external collaborators; the pipeline only sequences them.
type TranscriptGenerator interface {
	Generate(ctx context.Context, slides []SlideContent) ([]narration.TranscriptRecord, error)
	Refine(ctx context.Context, records []narration.TranscriptRecord) ([]narration.TranscriptRecord, error)
}

// SpeechSynthesizer turns refined transcripts into per-slide audio files
// under outDir.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, records []narration.TranscriptRecord, outDir string) ([]narration.Asset, error)
}

// DeckExtractor is the built-in ContentExtractor: it reads slide text
// straight from the deck's shape tree.
type DeckExtractor struct{}

func (DeckExtractor) Extract(ctx context.Context, deckPath string) ([]SlideContent, error) {
	info, err := pptx.ReadInfo(deckPath)
	if err != nil {
		return nil, err
	}

	slides := make([]SlideContent, 0, info.SlideCount)
	for number := 1; number <= info.SlideCount; number++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shapes, err := pptx.ReadSlideShapes(deckPath, number)
		if err != nil {
			return nil, err
		}
		var parts []string
		for _, shape := range shapes {
			if shape.Kind == pptx.ShapeText && shape.Text != "" {
				parts = append(parts, shape.Text)
			}
		}
		slides = append(slides, SlideContent{
			SlideNumber: number,
			Text:        strings.Join(parts, "\n"),
		})
	}
	return slides, nil
}

// ManifestNarrator satisfies the transcript and speech collaborator
// interfaces from a pre-synthesized narration manifest, letting the pipeline
// run end to end without generation or TTS providers.
type ManifestNarrator struct {
	assets []narration.Asset
}

// NewManifestNarrator loads the manifest at path.
func NewManifestNarrator(path string) (*ManifestNarrator, error) {
	assets, err := narration.LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return &ManifestNarrator{assets: assets}, nil
}

func (m *ManifestNarrator) Generate(ctx context.Context, slides []SlideContent) ([]narration.TranscriptRecord, error) {
	if len(m.assets) == 0 {
		return nil, nil
	}
	return narration.Records(m.assets), nil
}

func (m *ManifestNarrator) Refine(ctx context.Context, records []narration.TranscriptRecord) ([]narration.TranscriptRecord, error) {
	return records, nil
}

func (m *ManifestNarrator) Synthesize(ctx context.Context, records []narration.TranscriptRecord, outDir string) ([]narration.Asset, error) {
	return narration.Sorted(m.assets), nil
}

// requireCollaborators validates that the injected collaborator set is
// complete before a job starts.
func requireCollaborators(generator TranscriptGenerator, synthesizer SpeechSynthesizer) error {
	if generator == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "construct",
			"transcript generator not configured", nil)
	}
	if synthesizer == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "construct",
			"speech synthesizer not configured", nil)
	}
	return nil
}
