package status_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"slidecast/internal/config"
	"slidecast/internal/status"
)

func TestNoopSinkWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Status.Endpoint = ""
	sink := status.NewSink(&cfg, nil)
	if err := sink.Report(context.Background(), "job-1", status.Update{Status: "extracting"}); err != nil {
		t.Fatalf("expected noop sink to return nil, got %v", err)
	}
}

func TestHTTPSinkPatchesJobPath(t *testing.T) {
	var gotMethod, gotPath string
	var gotUpdate status.Update

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotUpdate); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Status.Endpoint = server.URL + "/api/jobs/"
	cfg.Status.RequestTimeout = 5

	sink := status.NewSink(&cfg, nil)
	err := sink.Report(context.Background(), "abc-123", status.Update{
		Status:          "rendering_video",
		ProgressPercent: 95,
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("expected PATCH, got %s", gotMethod)
	}
	if gotPath != "/api/jobs/abc-123" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotUpdate.Status != "rendering_video" || gotUpdate.ProgressPercent != 95 {
		t.Fatalf("unexpected update: %+v", gotUpdate)
	}
}

func TestHTTPSinkSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Status.Endpoint = server.URL
	sink := status.NewSink(&cfg, nil)
	if err := sink.Report(context.Background(), "abc", status.Update{Status: "error"}); err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
