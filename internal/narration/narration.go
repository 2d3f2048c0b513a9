package narration

import (
	"sort"
	"strings"
)

// Asset pairs one slide's synthesized speech audio with its source
// transcript. Assets are inputs to the core pipeline and are never mutated.
type Asset struct {
	SlideNumber int    `json:"slide_number"`
	AudioPath   string `json:"audio_path"`
	Transcript  string `json:"transcript"`
}

// TranscriptRecord is the per-slide entry of the transcripts.json output.
type TranscriptRecord struct {
	SlideNumber      int     `json:"slide_number"`
	Transcript       string  `json:"transcript"`
	DurationEstimate float64 `json:"duration_estimate"`
}

// EstimateDuration approximates spoken length in seconds from word count.
const secondsPerWord = 0.6

func EstimateDuration(transcript string) float64 {
	words := len(strings.Fields(transcript))
	return float64(words) * secondsPerWord
}

// Sorted returns a copy of assets in ascending slide-number order.
func Sorted(assets []Asset) []Asset {
	cp := make([]Asset, len(assets))
	copy(cp, assets)
	sort.Slice(cp, func(i, j int) bool { return cp[i].SlideNumber < cp[j].SlideNumber })
	return cp
}

// Records builds the ordered transcript record list for a set of assets.
func Records(assets []Asset) []TranscriptRecord {
	records := make([]TranscriptRecord, 0, len(assets))
	for _, asset := range Sorted(assets) {
		records = append(records, TranscriptRecord{
			SlideNumber:      asset.SlideNumber,
			Transcript:       asset.Transcript,
			DurationEstimate: EstimateDuration(asset.Transcript),
		})
	}
	return records
}
