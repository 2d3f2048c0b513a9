package narration

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
)

// WriteBundle packages per-slide audio + transcript text pairs into a zip at
// path. Assets whose audio file is absent are skipped and reported as
// warnings; if nothing could be bundled a readme-only archive is written so
// downstream links stay valid.
func WriteBundle(path string, assets []Asset) ([]string, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create audio bundle: %w", err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	var warnings []string
	bundled := 0

	for _, asset := range Sorted(assets) {
		source, err := os.Open(asset.AudioPath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("slide %d: audio not bundled: %v", asset.SlideNumber, err))
			continue
		}

		audioName := fmt.Sprintf("slide_%02d_audio%s", asset.SlideNumber, extensionOrMP3(asset.AudioPath))
		entry, err := archive.Create(audioName)
		if err != nil {
			source.Close()
			return warnings, fmt.Errorf("create bundle entry %s: %w", audioName, err)
		}
		if _, err := io.Copy(entry, source); err != nil {
			source.Close()
			return warnings, fmt.Errorf("copy audio %s: %w", audioName, err)
		}
		source.Close()

		textName := fmt.Sprintf("slide_%02d_transcript.txt", asset.SlideNumber)
		textEntry, err := archive.Create(textName)
		if err != nil {
			return warnings, fmt.Errorf("create bundle entry %s: %w", textName, err)
		}
		if _, err := textEntry.Write([]byte(asset.Transcript)); err != nil {
			return warnings, fmt.Errorf("write transcript %s: %w", textName, err)
		}
		bundled++
	}

	if bundled == 0 {
		readme, err := archive.Create("readme.txt")
		if err != nil {
			return warnings, fmt.Errorf("create bundle readme: %w", err)
		}
		if _, err := readme.Write([]byte("Audio files could not be packaged.\n")); err != nil {
			return warnings, fmt.Errorf("write bundle readme: %w", err)
		}
	}

	if err := archive.Close(); err != nil {
		return warnings, fmt.Errorf("finalize audio bundle: %w", err)
	}
	return warnings, file.Close()
}

func extensionOrMP3(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/' && path[i] != '\\'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ".mp3"
}
