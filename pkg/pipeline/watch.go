package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a dropped file must stay quiet before it is
// processed, so half-written uploads are not picked up mid-copy.
const watchDebounce = 500 * time.Millisecond

var watchedExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
	".m4a": true,
}

// Watcher observes an inbox directory and feeds every audio file dropped
// into it through the pipeline.
type Watcher struct {
	runner     *Runner
	dir        string
	sampleRate int
	channels   int
	logger     *slog.Logger

	mu        sync.Mutex
	timers    map[string]*time.Timer
	processed map[string]bool
}

// NewWatcher builds an inbox watcher over dir.
func NewWatcher(runner *Runner, dir string, sampleRate, channels int, logger *slog.Logger) *Watcher {
	return &Watcher{
		runner:     runner,
		dir:        dir,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logger,
		timers:     make(map[string]*time.Timer),
		processed:  make(map[string]bool),
	}
}

// Run blocks watching the inbox until the context is cancelled. Each
// file is processed at most once; failures are logged and the watcher
// keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	ready := make(chan string)
	if w.logger != nil {
		w.logger.Info("watching inbox", "dir", w.dir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.debounce(ctx, event.Name, ready)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.Error("watcher error", "error", err)
			}

		case path := <-ready:
			w.process(ctx, path)
		}
	}
}

// debounce (re)arms a per-path timer; the path is announced on ready
// once no further events arrive within the quiet window.
func (w *Watcher) debounce(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.processed[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(watchDebounce, func() {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			select {
			case ready <- path:
			case <-ctx.Done():
			}
			return nil
		})
	})
}

func (w *Watcher) process(ctx context.Context, path string) {
	w.mu.Lock()
	if w.processed[path] {
		w.mu.Unlock()
		return
	}
	w.processed[path] = true
	delete(w.timers, path)
	w.mu.Unlock()

	notePath, err := w.runner.ProcessFile(ctx, path, w.sampleRate, w.channels)
	if err != nil {
		if w.logger != nil {
			w.logger.Error("failed to process dropped file", "path", path, "error", err)
		}
		return
	}
	if w.logger != nil {
		w.logger.Info("processed dropped file", "path", path, "note", notePath)
	}
}
