// Package watcher rebuilds corpora when their source directories change.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches corpus source directories and invokes a rebuild callback,
// debounced per corpus, when PDF files are added, changed, or removed.
type Watcher struct {
	dirs      map[string]string // watched dir -> corpus name
	onRebuild func(corpusName string)
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	logger    *zap.Logger

	mu       sync.Mutex
	timers   map[string]*time.Timer // corpus name -> pending rebuild
	done     chan struct{}
	started  bool
	stopOnce sync.Once

	// rebuildMu serializes onRebuild calls. Timers for different corpora can
	// fire at the same time; rebuilds write the store file and must not overlap.
	rebuildMu sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the rebuild debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher over the given corpus directories. dirs maps each
// directory to the corpus it feeds; onRebuild is called with the corpus name
// after changes settle. Calls to onRebuild are serialized, even when several
// corpora change at once.
func New(dirs map[string]string, onRebuild func(corpusName string), logger *zap.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		dirs:      dirs,
		onRebuild: onRebuild,
		debounce:  defaultDebounce,
		logger:    logger,
		timers:    make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns after registering all directories; events
// are handled on a background goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	for dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			w.mu.Unlock()
			return err
		}
	}
	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching corpus directories", zap.Int("dirs", len(w.dirs)))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	corpus, ok := w.corpusForPath(ev.Name)
	if !ok {
		return
	}
	w.logger.Debug("corpus source changed",
		zap.String("corpus", corpus),
		zap.String("op", ev.Op.String()),
		zap.String("path", ev.Name),
	)
	w.scheduleRebuild(corpus)
}

// corpusForPath maps a changed PDF path to its corpus; non-PDF paths are ignored.
func (w *Watcher) corpusForPath(path string) (string, bool) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return "", false
	}
	corpus, ok := w.dirs[filepath.Dir(path)]
	return corpus, ok
}

func (w *Watcher) scheduleRebuild(corpus string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[corpus]; ok {
		timer.Stop()
	}
	w.timers[corpus] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, corpus)
		w.mu.Unlock()
		w.rebuildMu.Lock()
		defer w.rebuildMu.Unlock()
		w.onRebuild(corpus)
	})
}

// Stop stops watching and cancels pending rebuilds.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for _, timer := range w.timers {
			timer.Stop()
		}
		w.timers = make(map[string]*time.Timer)
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.mu.Unlock()
	})
}
