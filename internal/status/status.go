package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"slidecast/internal/config"
	"slidecast/internal/logging"
)

// Update is the progress report pushed to an external tracker.
type Update struct {
	Status          string  `json:"status"`
	ProgressPercent float64 `json:"progress_percent"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// Sink receives job progress updates. Implementations must be best effort:
// a sink failure is logged and never fails the job.
type Sink interface {
	Report(ctx context.Context, jobID string, update Update) error
}

// NewSink builds a sink for the configured endpoint. When no endpoint is
// configured, a noop implementation is returned.
func NewSink(cfg *config.Config, logger *slog.Logger) Sink {
	endpoint := strings.TrimSpace(cfg.Status.Endpoint)
	if endpoint == "" {
		return noopSink{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := time.Duration(cfg.Status.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &httpSink{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type httpSink struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// Report issues a PATCH to <endpoint>/<jobID> with the serialized update.
func (s *httpSink) Report(ctx context.Context, jobID string, update Update) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	url := s.endpoint + "/" + jobID
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send status update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("reported job status",
		logging.FieldJobID, jobID,
		"status", update.Status,
		"progress", update.ProgressPercent)
	return nil
}

type noopSink struct{}

func (noopSink) Report(context.Context, string, Update) error { return nil }
