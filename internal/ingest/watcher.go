package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// Watcher watches the addendum directory and fires a callback when an
// override file changes, so a long-running session picks up edits
// without a restart. Editors save in bursts (write, chmod, rename);
// a rate limiter coalesces each burst into one callback.
type Watcher struct {
	dir      string
	onChange func()
	logger   *slog.Logger
	limiter  *rate.Limiter

	fw   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	// Dir is the addendum directory to watch.
	Dir string
	// MinInterval is the shortest gap between two callbacks.
	MinInterval time.Duration
	// OnChange runs on the watcher goroutine after each coalesced
	// change. It must do its own locking.
	OnChange func()
	// Logger may be nil for the default logger.
	Logger *slog.Logger
}

// NewWatcher builds a watcher; Start arms it.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watcher needs a directory")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("watcher needs a change callback")
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Watcher{
		dir:      cfg.Dir,
		onChange: cfg.OnChange,
		logger:   cfg.Logger,
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The callback runs until Close.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fw = fw

	w.wg.Add(1)
	go w.run()
	w.logger.Info("Watching addendum directory", "dir", w.dir)
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !relevantEvent(event) {
				continue
			}
			if !w.limiter.Allow() {
				w.logger.Debug("Coalescing addendum change", "file", filepath.Base(event.Name))
				continue
			}
			w.logger.Info("Addendum change detected", "file", filepath.Base(event.Name))
			w.onChange()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Addendum watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// relevantEvent keeps only content changes to override files.
func relevantEvent(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".toml") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// Close stops the watcher and waits for the callback goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	var err error
	if w.fw != nil {
		err = w.fw.Close()
	}
	w.wg.Wait()
	return err
}
