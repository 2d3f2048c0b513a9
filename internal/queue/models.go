package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a conversion job.
type Status string

const (
	StatusPending              Status = "pending"
	StatusExtracting           Status = "extracting"
	StatusGeneratingTranscript Status = "generating_transcript"
	StatusRefiningTranscript   Status = "refining_transcript"
	StatusSynthesizingAudio    Status = "synthesizing_audio"
	StatusEmbeddingAudio       Status = "embedding_audio"
	StatusConvertingPDF        Status = "converting_pdf"
	StatusRenderingVideo       Status = "rendering_video"
	StatusCompleted            Status = "completed"
	StatusError                Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusExtracting,
	StatusGeneratingTranscript,
	StatusRefiningTranscript,
	StatusSynthesizingAudio,
	StatusEmbeddingAudio,
	StatusConvertingPDF,
	StatusRenderingVideo,
	StatusCompleted,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtracting:           {},
	StatusGeneratingTranscript: {},
	StatusRefiningTranscript:   {},
	StatusSynthesizingAudio:    {},
	StatusEmbeddingAudio:       {},
	StatusConvertingPDF:        {},
	StatusRenderingVideo:       {},
}

// ProgressFor returns the percentage reported when a job enters a status.
// Completion of the stage bumps to the upper bound before the next stage
// takes over.
func ProgressFor(status Status) float64 {
	switch status {
	case StatusExtracting:
		return 10
	case StatusGeneratingTranscript:
		return 30
	case StatusRefiningTranscript:
		return 50
	case StatusSynthesizingAudio:
		return 65
	case StatusEmbeddingAudio:
		return 85
	case StatusConvertingPDF:
		return 90
	case StatusRenderingVideo:
		return 95
	case StatusCompleted:
		return 100
	default:
		return 0
	}
}

// Outputs records the artifact paths a completed job published.
type Outputs struct {
	VideoPath       string `json:"video_path,omitempty"`
	DeckPath        string `json:"deck_path,omitempty"`
	PDFPath         string `json:"pdf_path,omitempty"`
	TranscriptsPath string `json:"transcripts_path,omitempty"`
	AudioBundlePath string `json:"audio_bundle_path,omitempty"`
}

// Job represents a conversion job persisted in SQLite.
type Job struct {
	ID              string
	SourcePath      string
	Title           string
	Status          Status
	ProgressPercent float64
	ProgressMessage string
	ErrorMessage    string
	OutputsJSON     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// SetStage moves the job into a processing status with its entry percentage.
func (j *Job) SetStage(status Status, message string) {
	j.Status = status
	j.ProgressPercent = ProgressFor(status)
	j.ProgressMessage = message
	j.ErrorMessage = ""
}

// SetProgress updates the percentage and message without changing status.
func (j *Job) SetProgress(percent float64, message string) {
	j.ProgressPercent = percent
	j.ProgressMessage = message
}

// SetCompleted marks the job finished and records its published artifacts.
func (j *Job) SetCompleted(outputs Outputs) error {
	data, err := json.Marshal(outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	j.Status = StatusCompleted
	j.ProgressPercent = 100
	j.ProgressMessage = "Learning module ready"
	j.ErrorMessage = ""
	j.OutputsJSON = string(data)
	return nil
}

// SetFailed marks the job as terminally failed with the given message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusError
	j.ErrorMessage = message
	j.ProgressMessage = message
}

// Outputs decodes the recorded artifact paths, empty when none were written.
func (j Job) Outputs() (Outputs, error) {
	if strings.TrimSpace(j.OutputsJSON) == "" {
		return Outputs{}, nil
	}
	var outputs Outputs
	if err := json.Unmarshal([]byte(j.OutputsJSON), &outputs); err != nil {
		return Outputs{}, fmt.Errorf("decode outputs: %w", err)
	}
	return outputs, nil
}
