package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
	"slidecast/internal/logging"
	"slidecast/internal/pipeline"
	"slidecast/internal/queue"
	"slidecast/internal/watcher"
)

func newWatchCommand(appCtx *appContext) *cobra.Command {
	var fallbackManifest string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox directory and convert decks as they arrive",
		Long: `Watch the inbox directory and convert decks as they arrive.

Each deck is narrated from a sibling manifest named <deck>.narration.json
(for example talk.pptx uses talk.narration.json). When no sibling manifest
exists the --narration fallback is used; decks with neither are failed.`,
		Args: cobra.NoArgs,
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

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if reset, err := store.ResetStuckProcessing(ctx); err != nil {
				return err
			} else if reset > 0 {
				logger.Info("reset interrupted jobs", "count", reset)
			}

			inboxWatcher, err := watcher.New(cfg.Paths.InboxDir, func(ctx context.Context, deckPath string) error {
				_, err := store.NewJob(ctx, deckPath)
				return err
			}, cfg.Workflow.SettleSeconds, logger)
			if err != nil {
				return err
			}
			defer inboxWatcher.Close()

			go func() {
				if err := inboxWatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("inbox watcher exited", logging.Error(err))
				}
			}()

			loop := &queueLoop{
				cfg:              cfg,
				store:            store,
				fallbackManifest: fallbackManifest,
				logger:           logger,
			}
			return loop.run(ctx)
		},
	}

	cmd.Flags().StringVarP(&fallbackManifest, "narration", "n", "", "Fallback narration manifest for decks without a sibling manifest")
	return cmd
}

// queueLoop drains pending jobs sequentially, polling between batches.
type queueLoop struct {
	cfg              *config.Config
	store            *queue.Store
	fallbackManifest string
	logger           *slog.Logger
}

func (l *queueLoop) run(ctx context.Context) error {
	interval := time.Duration(l.cfg.Workflow.QueuePollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for {
		job, err := l.store.NextPending(ctx)
		if err != nil {
			return err
		}
		if job == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
			continue
		}

		l.logger.Info("starting job", logging.FieldJobID, job.ID, "deck", job.SourcePath)
		if err := l.process(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			l.logger.Error("job failed", logging.FieldJobID, job.ID, logging.Error(err))
		}
	}
}

func (l *queueLoop) process(ctx context.Context, job *queue.Job) error {
	manifestPath, err := l.manifestFor(job.SourcePath)
	if err != nil {
		job.SetFailed(err.Error())
		if updateErr := l.store.Update(ctx, job); updateErr != nil {
			return updateErr
		}
		return err
	}

	narrator, err := pipeline.NewManifestNarrator(manifestPath)
	if err != nil {
		job.SetFailed(fmt.Sprintf("load narration manifest: %v", err))
		if updateErr := l.store.Update(ctx, job); updateErr != nil {
			return updateErr
		}
		return err
	}

	pipe, err := pipeline.New(pipeline.Options{
		Config:      l.cfg,
		Store:       l.store,
		Generator:   narrator,
		Synthesizer: narrator,
		Logger:      l.logger,
	})
	if err != nil {
		return err
	}
	return pipe.Run(ctx, job)
}

// manifestFor prefers the deck's sibling manifest over the fallback.
func (l *queueLoop) manifestFor(deckPath string) (string, error) {
	sibling := strings.TrimSuffix(deckPath, filepath.Ext(deckPath)) + ".narration.json"
	if _, err := os.Stat(sibling); err == nil {
		return sibling, nil
	}
	if l.fallbackManifest != "" {
		return l.fallbackManifest, nil
	}
	return "", fmt.Errorf("no narration manifest found for %s (expected %s)", deckPath, sibling)
}
