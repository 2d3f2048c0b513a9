package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"slidecast/internal/config"
	"slidecast/internal/fileutil"
	"slidecast/internal/logging"
	"slidecast/internal/media/ffprobe"
	"slidecast/internal/narration"
	"slidecast/internal/notifications"
	"slidecast/internal/pptx"
	"slidecast/internal/queue"
	"slidecast/internal/rasterize"
	"slidecast/internal/segment"
	"slidecast/internal/services"
	"slidecast/internal/status"
	"slidecast/internal/toolexec"
)

// Final artifact filenames promoted into the job's output directory.
const (
	ArtifactVideo       = "learning_module.mp4"
	ArtifactDeck        = "narrated_presentation.pptx"
	ArtifactPDF         = "original_presentation.pdf"
	ArtifactTranscripts = "transcripts.json"
	ArtifactAudioBundle = "audio_files.zip"
)

// Options configures a Pipeline. Config, Generator, and Synthesizer are
// required; everything else gets a sensible default.
type Options struct {
	Config      *config.Config
	Store       *queue.Store
	Sink        status.Sink
	Notifier    notifications.Service
	Extractor   ContentExtractor
	Generator   TranscriptGenerator
	Synthesizer SpeechSynthesizer
	Runner      toolexec.Runner
	Logger      *slog.Logger
}

// Pipeline drives one job through the conversion state machine. Each job
// owns an exclusive working directory that is purged whether the job
// completes or fails.
type Pipeline struct {
	cfg         *config.Config
	store       *queue.Store
	sink        status.Sink
	notifier    notifications.Service
	extractor   ContentExtractor
	generator   TranscriptGenerator
	synthesizer SpeechSynthesizer
	rasterizer  *rasterize.Rasterizer
	segments    *segment.Synthesizer
	concat      *segment.Concatenator
	embedder    *pptx.Embedder
	logger      *slog.Logger
}

// New builds a Pipeline from options.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "construct", "config is required", nil)
	}
	if err := requireCollaborators(opts.Generator, opts.Synthesizer); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := opts.Runner
	if runner == nil {
		runner = toolexec.NewRunner()
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = DeckExtractor{}
	}
	sink := opts.Sink
	if sink == nil {
		sink = status.NewSink(opts.Config, logger)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(opts.Config)
	}

	cfg := opts.Config
	prober := ffprobe.NewProber(cfg.Tools.FFprobe, cfg.Tools.ProbeTimeout, runner)
	return &Pipeline{
		cfg:         cfg,
		store:       opts.Store,
		sink:        sink,
		notifier:    notifier,
		extractor:   extractor,
		generator:   opts.Generator,
		synthesizer: opts.Synthesizer,
		rasterizer:  rasterize.New(runner, cfg.Tools, cfg.Video, logger),
		segments:    segment.NewSynthesizer(runner, prober, cfg.Tools, cfg.Video, logger),
		concat:      segment.NewConcatenator(runner, cfg.Tools, logger),
		embedder:    pptx.NewEmbedder(logger),
		logger:      logger,
	}, nil
}

// Run executes the full state machine for job. On any failure the job is
// moved to the terminal error state with the originating stage recorded, and
// the working directory is purged either way.
func (p *Pipeline) Run(ctx context.Context, job *queue.Job) error {
	logger := p.logger.With(logging.FieldJobID, job.ID)
	ctx = services.WithJobID(ctx, job.ID)

	workDir := filepath.Join(p.cfg.Paths.WorkDir, "job-"+job.ID)
	lock := flock.New(workDir + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return p.fail(ctx, job, job.Status, fmt.Errorf("acquire workdir lock: %w", err))
	}
	if !locked {
		return p.fail(ctx, job, job.Status,
			services.Wrap(services.ErrConfiguration, "pipeline", "claim workdir",
				"working directory already owned by another run", nil))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("purge working directory", logging.Error(err))
		}
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return p.fail(ctx, job, job.Status, fmt.Errorf("create working directory: %w", err))
	}

	_ = p.notifier.NotifyJobStarted(ctx, job.Title)

	// extracting
	if err := p.enterStage(ctx, job, queue.StatusExtracting, "Reading deck"); err != nil {
		return p.fail(ctx, job, queue.StatusExtracting, err)
	}
	info, err := pptx.ReadInfo(job.SourcePath)
	if err != nil {
		return p.fail(ctx, job, queue.StatusExtracting, err)
	}
	slides, err := p.extractor.Extract(ctx, job.SourcePath)
	if err != nil {
		return p.fail(ctx, job, queue.StatusExtracting, err)
	}
	logger.Info("extracted deck content", "slides", info.SlideCount)
	p.bumpProgress(ctx, job, 25, "Deck content extracted")

	// generating_transcript
	if err := p.enterStage(ctx, job, queue.StatusGeneratingTranscript, "Drafting narration"); err != nil {
		return p.fail(ctx, job, queue.StatusGeneratingTranscript, err)
	}
	records, err := p.generator.Generate(ctx, slides)
	if err != nil {
		return p.fail(ctx, job, queue.StatusGeneratingTranscript, err)
	}
	p.bumpProgress(ctx, job, 45, "Narration drafted")

	// refining_transcript
	if err := p.enterStage(ctx, job, queue.StatusRefiningTranscript, "Refining narration"); err != nil {
		return p.fail(ctx, job, queue.StatusRefiningTranscript, err)
	}
	records, err = p.generator.Refine(ctx, records)
	if err != nil {
		return p.fail(ctx, job, queue.StatusRefiningTranscript, err)
	}
	p.bumpProgress(ctx, job, 60, "Narration refined")

	// synthesizing_audio
	if err := p.enterStage(ctx, job, queue.StatusSynthesizingAudio, "Synthesizing speech"); err != nil {
		return p.fail(ctx, job, queue.StatusSynthesizingAudio, err)
	}
	assets, err := p.synthesizer.Synthesize(ctx, records, filepath.Join(workDir, "audio"))
	if err != nil {
		return p.fail(ctx, job, queue.StatusSynthesizingAudio, err)
	}
	if err := narration.WriteTranscripts(filepath.Join(workDir, ArtifactTranscripts), narration.Records(assets)); err != nil {
		return p.fail(ctx, job, queue.StatusSynthesizingAudio, err)
	}
	bundleWarnings, err := narration.WriteBundle(filepath.Join(workDir, ArtifactAudioBundle), assets)
	if err != nil {
		return p.fail(ctx, job, queue.StatusSynthesizingAudio, err)
	}
	logWarnings(logger, "synthesizing_audio", bundleWarnings)
	p.bumpProgress(ctx, job, 80, "Speech synthesized")

	// embedding_audio
	if err := p.enterStage(ctx, job, queue.StatusEmbeddingAudio, "Embedding narration into deck"); err != nil {
		return p.fail(ctx, job, queue.StatusEmbeddingAudio, err)
	}
	embedResult, err := p.embedder.Embed(ctx, job.SourcePath, assets, workDir,
		filepath.Join(workDir, ArtifactDeck))
	if err != nil {
		return p.fail(ctx, job, queue.StatusEmbeddingAudio, err)
	}
	logWarnings(logger, "embedding_audio", embedResult.Warnings)

	// converting_pdf: the reference document is best effort. A deck that can
	// only be rasterized via geometry compositing has no converter for this
	// either, and must still finish.
	if err := p.enterStage(ctx, job, queue.StatusConvertingPDF, "Producing reference document"); err != nil {
		return p.fail(ctx, job, queue.StatusConvertingPDF, err)
	}
	pdfPath := ""
	if converted, convErr := p.rasterizer.ConvertToPDF(ctx, job.SourcePath, filepath.Join(workDir, "reference")); convErr == nil {
		pdfPath = filepath.Join(workDir, ArtifactPDF)
		if moveErr := os.Rename(converted, pdfPath); moveErr != nil {
			logger.Warn("stage reference document", logging.Error(moveErr))
			pdfPath = ""
		}
	} else {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return p.fail(ctx, job, queue.StatusConvertingPDF, ctxErr)
		}
		logger.Warn("reference document unavailable", logging.Error(convErr))
	}

	// rendering_video
	if err := p.enterStage(ctx, job, queue.StatusRenderingVideo, "Rendering video"); err != nil {
		return p.fail(ctx, job, queue.StatusRenderingVideo, err)
	}
	videoPath, err := p.renderVideo(ctx, job, assets, workDir, logger)
	if err != nil {
		return p.fail(ctx, job, queue.StatusRenderingVideo, err)
	}

	// completed: only now are artifacts promoted out of the working directory.
	outputs, err := p.promote(job, workDir, videoPath, pdfPath)
	if err != nil {
		return p.fail(ctx, job, queue.StatusRenderingVideo, err)
	}
	if err := job.SetCompleted(outputs); err != nil {
		return p.fail(ctx, job, queue.StatusRenderingVideo, err)
	}
	p.persist(ctx, job)
	p.report(ctx, job)
	_ = p.notifier.NotifyJobCompleted(ctx, job.Title, outputs.VideoPath)
	logger.Info("job completed", "video", outputs.VideoPath, "embedded_slides", len(embedResult.EmbeddedSlides))
	return nil
}

func (p *Pipeline) renderVideo(ctx context.Context, job *queue.Job, assets []narration.Asset, workDir string, logger *slog.Logger) (string, error) {
	rasterized, err := p.rasterizer.Rasterize(ctx, job.SourcePath, workDir)
	if err != nil {
		return "", err
	}
	logWarnings(logger, "rendering_video", rasterized.Warnings)

	imageBySlide := make(map[int]string, len(rasterized.Images))
	for _, image := range rasterized.Images {
		imageBySlide[image.Number] = image.Path
	}

	var inputs []segment.Input
	for _, asset := range narration.Sorted(assets) {
		imagePath, ok := imageBySlide[asset.SlideNumber]
		if !ok {
			logger.Warn("no slide image for narration, skipping",
				logging.FieldSlide, asset.SlideNumber)
			continue
		}
		inputs = append(inputs, segment.Input{
			SlideNumber: asset.SlideNumber,
			ImagePath:   imagePath,
			AudioPath:   asset.AudioPath,
		})
	}

	rendered, err := p.segments.Render(ctx, inputs, filepath.Join(workDir, "segments"))
	if err != nil {
		return "", err
	}
	logWarnings(logger, "rendering_video", rendered.Warnings)

	videoPath := filepath.Join(workDir, ArtifactVideo)
	if err := p.concat.Concat(ctx, rendered.Pieces, workDir, videoPath); err != nil {
		return "", err
	}
	return videoPath, nil
}

// promote copies the finished artifacts into the job's output directory with
// checksum verification. Missing optional artifacts are simply absent from
// the recorded outputs.
func (p *Pipeline) promote(job *queue.Job, workDir, videoPath, pdfPath string) (queue.Outputs, error) {
	outDir := filepath.Join(p.cfg.Paths.OutputDir, job.ID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return queue.Outputs{}, fmt.Errorf("create output directory: %w", err)
	}

	outputs := queue.Outputs{}
	required := []struct {
		src  string
		name string
		dest *string
	}{
		{videoPath, ArtifactVideo, &outputs.VideoPath},
		{filepath.Join(workDir, ArtifactDeck), ArtifactDeck, &outputs.DeckPath},
		{filepath.Join(workDir, ArtifactTranscripts), ArtifactTranscripts, &outputs.TranscriptsPath},
		{filepath.Join(workDir, ArtifactAudioBundle), ArtifactAudioBundle, &outputs.AudioBundlePath},
	}
	for _, artifact := range required {
		dest := filepath.Join(outDir, artifact.name)
		if err := fileutil.CopyFileVerified(artifact.src, dest); err != nil {
			return queue.Outputs{}, fmt.Errorf("promote %s: %w", artifact.name, err)
		}
		*artifact.dest = dest
	}

	if pdfPath != "" {
		dest := filepath.Join(outDir, ArtifactPDF)
		if err := fileutil.CopyFileVerified(pdfPath, dest); err != nil {
			return queue.Outputs{}, fmt.Errorf("promote %s: %w", ArtifactPDF, err)
		}
		outputs.PDFPath = dest
	}
	return outputs, nil
}

// enterStage checks for cancellation, then moves the job into the stage and
// reports the transition.
func (p *Pipeline) enterStage(ctx context.Context, job *queue.Job, stage queue.Status, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	job.SetStage(stage, message)
	p.persist(ctx, job)
	p.report(ctx, job)
	return nil
}

// bumpProgress raises the percentage within the current stage's band.
func (p *Pipeline) bumpProgress(ctx context.Context, job *queue.Job, percent float64, message string) {
	job.SetProgress(percent, message)
	p.persist(ctx, job)
	p.report(ctx, job)
}

func (p *Pipeline) fail(ctx context.Context, job *queue.Job, stage queue.Status, cause error) error {
	message := fmt.Sprintf("%s: %s", stage, cause)
	job.SetFailed(message)
	p.persist(ctx, job)
	p.report(ctx, job)
	_ = p.notifier.NotifyJobFailed(ctx, job.Title, cause)
	p.logger.Error("job failed",
		logging.FieldJobID, job.ID,
		logging.FieldStage, string(stage),
		logging.Error(cause))
	return cause
}

func (p *Pipeline) persist(ctx context.Context, job *queue.Job) {
	if p.store == nil {
		return
	}
	if err := p.store.Update(context.WithoutCancel(ctx), job); err != nil {
		p.logger.Warn("persist job state", logging.FieldJobID, job.ID, logging.Error(err))
	}
}

func (p *Pipeline) report(ctx context.Context, job *queue.Job) {
	update := status.Update{
		Status:          string(job.Status),
		ProgressPercent: job.ProgressPercent,
		ErrorMessage:    job.ErrorMessage,
	}
	if err := p.sink.Report(context.WithoutCancel(ctx), job.ID, update); err != nil {
		p.logger.Warn("report job status", logging.FieldJobID, job.ID, logging.Error(err))
	}
}

func logWarnings(logger *slog.Logger, stage string, warnings []string) {
	for _, warning := range warnings {
		logger.Warn(warning, logging.FieldStage, stage)
	}
}
