package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"slidecast/internal/services"
	"slidecast/internal/toolexec"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Prober executes ffprobe through the shared tool runner.
type Prober struct {
	binary  string
	timeout time.Duration
	runner  toolexec.Runner
}

// NewProber constructs a prober for the configured ffprobe binary.
func NewProber(binary string, timeoutSeconds int, runner toolexec.Runner) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if runner == nil {
		runner = toolexec.NewRunner()
	}
	return &Prober{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		runner:  runner,
	}
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "ffprobe", "inspect", "empty path", nil)
	}

	res, err := p.runner.Run(ctx, toolexec.Command{
		Binary:  p.binary,
		Args:    []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path},
		Timeout: p.timeout,
	})
	if err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal([]byte(res.Stdout), &result); err != nil {
		return Result{}, services.Wrap(services.ErrToolExecution, "ffprobe", "parse", "unexpected probe output", err)
	}
	return result, nil
}

// AudioDuration returns the container duration of an audio file in seconds.
// A missing or unparseable duration is an execution failure, not a zero.
func (p *Prober) AudioDuration(ctx context.Context, path string) (float64, error) {
	result, err := p.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(result.Format.Duration), 64)
	if err != nil || duration <= 0 {
		return 0, services.Wrap(services.ErrToolExecution, "ffprobe", "duration",
			fmt.Sprintf("no decodable duration for %s", path), err)
	}
	return duration, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when
// unavailable.
func (r Result) DurationSeconds() float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Format.Duration), 64)
	if err != nil {
		return 0
	}
	return parsed
}
