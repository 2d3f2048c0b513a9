package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slidecast/internal/pipeline"
	"slidecast/internal/queue"
)

func newRunCommand(appCtx *appContext) *cobra.Command {
	var manifestPath string
	var jobID string

	cmd := &cobra.Command{
		Use:   "run <deck.pptx>",
		Short: "Convert one deck into a narrated learning module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := appCtx.ensureLogger()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			narrator, err := pipeline.NewManifestNarrator(manifestPath)
			if err != nil {
				return err
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var job *queue.Job
			if jobID != "" {
				job, err = store.NewJobWithID(ctx, jobID, args[0])
			} else {
				job, err = store.NewJob(ctx, args[0])
			}
			if err != nil {
				return err
			}

			pipe, err := pipeline.New(pipeline.Options{
				Config:      cfg,
				Store:       store,
				Generator:   narrator,
				Synthesizer: narrator,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			if err := pipe.Run(ctx, job); err != nil {
				return fmt.Errorf("job %s: %w", job.ID, err)
			}

			outputs, err := job.Outputs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s completed\n", job.ID)
			fmt.Fprintf(out, "  Video: %s\n", outputs.VideoPath)
			fmt.Fprintf(out, "  Narrated deck: %s\n", outputs.DeckPath)
			if outputs.PDFPath != "" {
				fmt.Fprintf(out, "  Reference PDF: %s\n", outputs.PDFPath)
			}
			fmt.Fprintf(out, "  Transcripts: %s\n", outputs.TranscriptsPath)
			fmt.Fprintf(out, "  Audio bundle: %s\n", outputs.AudioBundlePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "narration", "n", "", "Narration manifest (JSON array of slide_number/audio_path/transcript)")
	cmd.Flags().StringVar(&jobID, "job-id", "", "Use an explicit job identifier instead of a generated one")
	_ = cmd.MarkFlagRequired("narration")
	return cmd
}
