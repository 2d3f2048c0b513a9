package queue

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewJobDefaults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/inbox/physics-101.pptx")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job must get an identifier")
	}
	if job.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", job.Status)
	}
	if job.Title != "physics-101" {
		t.Fatalf("unexpected title: %q", job.Title)
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Fatal("timestamps must be set")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/inbox/deck.pptx")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	job.SetStage(StatusExtracting, "Rasterizing slides")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	loaded, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != StatusExtracting {
		t.Fatalf("expected extracting, got %s", loaded.Status)
	}
	if loaded.ProgressPercent != 10 {
		t.Fatalf("expected stage entry progress 10, got %v", loaded.ProgressPercent)
	}
	if loaded.ProgressMessage != "Rasterizing slides" {
		t.Fatalf("unexpected message: %q", loaded.ProgressMessage)
	}
}

func TestCompletedJobRecordsOutputs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/inbox/deck.pptx")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.SetCompleted(Outputs{
		VideoPath: "/out/learning_module.mp4",
		DeckPath:  "/out/narrated_presentation.pptx",
	}); err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	loaded, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != StatusCompleted || loaded.ProgressPercent != 100 {
		t.Fatalf("unexpected terminal state: %+v", loaded)
	}
	outputs, err := loaded.Outputs()
	if err != nil {
		t.Fatalf("decode outputs: %v", err)
	}
	if outputs.VideoPath != "/out/learning_module.mp4" {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}
}

func TestNextPendingOrdersByCreation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.NewJob(ctx, "/inbox/first.pptx")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if _, err := store.NewJob(ctx, "/inbox/second.pptx"); err != nil {
		t.Fatalf("new job: %v", err)
	}

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("next pending: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending job, got %+v", next)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/inbox/deck.pptx")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.SetStage(StatusRenderingVideo, "Encoding segments")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset job, got %d", reset)
	}
	loaded, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != StatusPending || loaded.ProgressPercent != 0 {
		t.Fatalf("job not reset: %+v", loaded)
	}
}

func TestRetryFailed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.NewJob(ctx, "/inbox/deck.pptx")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	job.SetFailed("renderer exploded")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	retried, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected 1 retried job, got %d", retried)
	}
	loaded, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != StatusPending || loaded.ErrorMessage != "" {
		t.Fatalf("job not retried: %+v", loaded)
	}
}

func TestHealthSummary(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pending, _ := store.NewJob(ctx, "/inbox/a.pptx")
	_ = pending
	processing, _ := store.NewJob(ctx, "/inbox/b.pptx")
	processing.SetStage(StatusEmbeddingAudio, "")
	if err := store.Update(ctx, processing); err != nil {
		t.Fatalf("update: %v", err)
	}
	failed, _ := store.NewJob(ctx, "/inbox/c.pptx")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("update: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Processing != 1 || health.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", health)
	}
}

func TestProgressBands(t *testing.T) {
	cases := map[Status]float64{
		StatusExtracting:           10,
		StatusGeneratingTranscript: 30,
		StatusRefiningTranscript:   50,
		StatusSynthesizingAudio:    65,
		StatusEmbeddingAudio:       85,
		StatusConvertingPDF:        90,
		StatusRenderingVideo:       95,
		StatusCompleted:            100,
		StatusPending:              0,
	}
	for status, want := range cases {
		if got := ProgressFor(status); got != want {
			t.Fatalf("%s: expected %v, got %v", status, want, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Rendering_Video "); !ok || status != StatusRenderingVideo {
		t.Fatalf("expected rendering_video, got %v %v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("unknown status must not parse")
	}
}
