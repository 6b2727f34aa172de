// Package inbox watches a directory for scanned survey PDFs.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must go without writes before it is handed off.
const DefaultSettle = 2 * time.Second

// Handler processes one PDF. Errors are logged and do not stop the watcher.
type Handler func(ctx context.Context, path string) error

// Config configures a Watcher.
type Config struct {
	Dir string

	// Settle delays handling until the file has stopped changing (default: DefaultSettle).
	Settle time.Duration

	// IncludeExisting hands off PDFs already present when Run starts.
	IncludeExisting bool

	Handler Handler
	Logger  *slog.Logger
}

// Watcher emits each new *.pdf in a directory to a handler, once per path.
// Handlers run one at a time in arrival order.
type Watcher struct {
	dir      string
	settle   time.Duration
	existing bool
	handler  Handler
	logger   *slog.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	handled map[string]bool
	queue   chan string
	stopped chan struct{}
	stop    sync.Once
}

// New validates cfg and returns a Watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("inbox handler is required")
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("inbox directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox %s is not a directory", cfg.Dir)
	}
	settle := cfg.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      cfg.Dir,
		settle:   settle,
		existing: cfg.IncludeExisting,
		handler:  cfg.Handler,
		logger:   logger.With("inbox", cfg.Dir),
		timers:   make(map[string]*time.Timer),
		handled:  make(map[string]bool),
		queue:    make(chan string, 64),
		stopped:  make(chan struct{}),
	}, nil
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for survey PDFs")

	if w.existing {
		entries, err := os.ReadDir(w.dir)
		if err != nil {
			return fmt.Errorf("failed to list inbox: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && isPDF(e.Name()) {
				w.schedule(filepath.Join(w.dir, e.Name()), 0)
			}
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.drain(ctx)
	}()
	defer func() {
		w.stopTimers()
		w.stop.Do(func() { close(w.stopped) })
		<-done
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("inbox watcher stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isPDF(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) {
				w.schedule(ev.Name, w.settle)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// schedule (re)starts the settle timer for path. Further writes push it back.
func (w *Watcher) schedule(path string, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.handled[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(delay)
		return
	}
	w.timers[path] = time.AfterFunc(delay, func() { w.enqueue(path) })
}

func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	if w.handled[path] {
		w.mu.Unlock()
		return
	}
	// A rename away from the inbox also fires; skip paths that are gone.
	if _, err := os.Stat(path); err != nil {
		w.mu.Unlock()
		return
	}
	w.handled[path] = true
	w.mu.Unlock()

	select {
	case w.queue <- path:
	case <-w.stopped:
	}
}

func (w *Watcher) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			w.logger.Info("new survey PDF", "path", path)
			if err := w.handler(ctx, path); err != nil {
				w.logger.Error("failed to process PDF", "path", path, "error", err)
			}
		}
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// Handled reports whether path has been handed to the handler.
func (w *Watcher) Handled(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handled[path]
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
