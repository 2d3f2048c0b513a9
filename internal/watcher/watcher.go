package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"slidecast/internal/logging"
)

// Handler is invoked for each deck dropped into the inbox.
type Handler func(ctx context.Context, deckPath string) error

// Watcher monitors the inbox directory and hands new decks to the handler.
// Decks are settled briefly before handling so partially copied files are
// not picked up mid-write.
type Watcher struct {
	inboxDir string
	handler  Handler
	settle   time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// New creates a watcher for inboxDir. settleSeconds delays handling after a
// create event to let the file finish writing.
func New(inboxDir string, handler Handler, settleSeconds int, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(inboxDir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch inbox %s: %w", inboxDir, err)
	}
	settle := time.Duration(settleSeconds) * time.Second
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &Watcher{
		inboxDir: inboxDir,
		handler:  handler,
		settle:   settle,
		logger:   logger,
		watcher:  fsWatcher,
	}, nil
}

// Run blocks until ctx is done, processing decks sequentially as they
// arrive. Handler failures are logged and do not stop the watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching inbox", "dir", w.inboxDir)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) || !isDeck(event.Name) {
				continue
			}
			w.logger.Info("deck detected", "path", event.Name)

			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				return ctx.Err()
			}
			if err := w.handler(ctx, event.Name); err != nil {
				w.logger.Error("handle deck", "path", event.Name, logging.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("inbox watch error", logging.Error(err))
		}
	}
}

// Close releases the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func isDeck(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pptx")
}
