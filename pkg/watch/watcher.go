// Package watch re-runs the pipeline when source or message files change.
//
// Registries are cross-file, so every change triggers a full run; bursts of
// events are debounced into one run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/glot/pkg/pipeline"
)

// DefaultDebounce groups editor save bursts.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce delays a run after the last event. 0 uses DefaultDebounce.
	Debounce time.Duration
}

// Run is the outcome of one pipeline run.
type Run struct {
	Result *pipeline.Result
	Err    error
	// Changed lists the paths that triggered the run; empty for the
	// initial run.
	Changed []string
}

// Stats reports watcher state.
type Stats struct {
	PendingChanges int  `json:"pending_changes"`
	Runs           int  `json:"runs"`
	IsRunning      bool `json:"is_running"`
}

// Watcher watches cfg.Root (and cfg.MessagesRoot when set).
//
//	w, err := watch.New(cfg, runner, watch.Options{}, logger, func(r watch.Run) { … })
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher *fsnotify.Watcher
	runner  *pipeline.Runner
	cfg     pipeline.Config
	logger  *slog.Logger
	options Options
	onRun   func(Run)

	pendingMu sync.Mutex
	pending   map[string]bool
	timer     *time.Timer
	runs      int

	// runMu serializes pipeline runs; a Runner must not be used concurrently.
	runMu sync.Mutex

	ctx      context.Context
	stopChan chan struct{}
	stopped  bool
	started  bool
	mu       sync.Mutex
}

// New creates a watcher. onRun is called after every run, from the
// watcher's goroutines, never concurrently.
func New(cfg pipeline.Config, runner *pipeline.Runner, options Options, logger *slog.Logger, onRun func(Run)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	if onRun == nil {
		onRun = func(Run) {}
	}
	// fsnotify reports paths the way they were added; absolute roots keep
	// them comparable with the globs.
	if cfg.Root, err = filepath.Abs(cfg.Root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	if cfg.MessagesRoot != "" {
		if cfg.MessagesRoot, err = filepath.Abs(cfg.MessagesRoot); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve messages path: %w", err)
		}
	}
	return &Watcher{
		watcher:  fsw,
		runner:   runner,
		cfg:      cfg,
		logger:   logger,
		options:  options,
		onRun:    onRun,
		pending:  map[string]bool{},
		stopChan: make(chan struct{}),
	}, nil
}

// Start performs an initial run, registers watches and returns. Events are
// processed in the background until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.started = true
	w.ctx = ctx
	w.mu.Unlock()

	if err := w.addTree(w.cfg.Root, true); err != nil {
		return err
	}
	if w.cfg.MessagesRoot != "" {
		if err := w.addTree(w.cfg.MessagesRoot, false); err != nil {
			w.logger.Warn("failed to watch messages", "path", w.cfg.MessagesRoot, "error", err)
		}
	}
	w.logger.Info("file watcher started", "root", w.cfg.Root)

	w.run(nil)

	go w.eventLoop(ctx)
	return nil
}

// addTree watches dir and its subdirectories. Source trees skip ignored
// directories.
func (w *Watcher) addTree(dir string, source bool) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == dir {
			return nil
		}
		if source && pipeline.Ignored(w.cfg, path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop cancels pending runs and closes the watcher. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = map[string]bool{}
	w.pendingMu.Unlock()

	err := w.watcher.Close()
	w.logger.Info("file watcher stopped")
	return err
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			_ = w.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if event.Op == fsnotify.Chmod {
		return
	}

	if w.isMessageFile(path) {
		w.schedule(path)
		return
	}
	if pipeline.Ignored(w.cfg, path) {
		return
	}
	// New directories need their own watch.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path, true); err == nil {
				w.logger.Debug("watching new directory", "path", path)
			}
			return
		}
	}
	// Removed or renamed files no longer match by content, so any path
	// that could have been a source file counts.
	if pipeline.Matches(w.cfg, path) {
		w.logger.Debug("file event", "op", event.Op.String(), "file", path)
		w.schedule(path)
	}
}

func (w *Watcher) isMessageFile(path string) bool {
	if w.cfg.MessagesRoot == "" {
		return false
	}
	rel, err := filepath.Rel(w.cfg.MessagesRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(filepath.ToSlash(rel), "../") {
		return false
	}
	switch filepath.Ext(path) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// schedule records path and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = map[string]bool{}
	w.timer = nil
	w.pendingMu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)
	w.run(changed)
}

func (w *Watcher) run(changed []string) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	res, err := w.runner.Run(w.ctx, w.cfg)
	if err != nil {
		w.logger.Warn("pipeline run failed", "changed", len(changed), "error", err)
	}

	w.pendingMu.Lock()
	w.runs++
	w.pendingMu.Unlock()

	w.onRun(Run{Result: res, Err: err, Changed: changed})
}

// Stats returns current watcher state.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	return Stats{PendingChanges: len(w.pending), Runs: w.runs, IsRunning: running}
}
