package narration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"slidecast/internal/services"
)

// LoadManifest reads a narration manifest: a JSON array of
// {slide_number, audio_path, transcript} entries. Relative audio paths are
// resolved against the manifest's directory. Slide numbers must be positive
// and unique; slides without narration are simply absent from the list.
func LoadManifest(path string) ([]Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "narration", "read manifest", path, err)
	}

	var assets []Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, services.Wrap(services.ErrValidation, "narration", "parse manifest", path, err)
	}

	base := filepath.Dir(path)
	seen := make(map[int]struct{}, len(assets))
	for i := range assets {
		if assets[i].SlideNumber <= 0 {
			return nil, services.Wrap(services.ErrValidation, "narration", "parse manifest",
				fmt.Sprintf("entry %d: slide_number must be positive", i), nil)
		}
		if _, dup := seen[assets[i].SlideNumber]; dup {
			return nil, services.Wrap(services.ErrValidation, "narration", "parse manifest",
				fmt.Sprintf("duplicate slide_number %d", assets[i].SlideNumber), nil)
		}
		seen[assets[i].SlideNumber] = struct{}{}
		if assets[i].AudioPath != "" && !filepath.IsAbs(assets[i].AudioPath) {
			assets[i].AudioPath = filepath.Join(base, assets[i].AudioPath)
		}
	}
	return Sorted(assets), nil
}

// WriteTranscripts persists the ordered transcript records as JSON.
func WriteTranscripts(path string, records []TranscriptRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcripts: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
