// Package watch reruns a conversion whenever files below a source directory
// change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/logfields"
)

// DefaultDebounce is the quiet period applied when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc performs one conversion pass.
type RebuildFunc func(ctx context.Context) error

// Watcher watches a directory tree and calls a RebuildFunc after changes
// settle. At most one rebuild runs at a time; changes arriving during a
// rebuild queue exactly one more.
type Watcher struct {
	root     string
	rebuild  RebuildFunc
	debounce time.Duration
	ignore   []string
	rescan   time.Duration
	logger   *slog.Logger
	ready    chan struct{}
	newFS    func() (*fsnotify.Watcher, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild starts.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRescan schedules a full rebuild every interval even without events,
// for filesystems that do not deliver change notifications.
func WithRescan(interval time.Duration) Option {
	return func(w *Watcher) {
		w.rescan = interval
	}
}

// WithIgnoredDir excludes a directory (typically the output tree) from
// watching.
func WithIgnoredDir(dir string) Option {
	return func(w *Watcher) {
		if abs, err := filepath.Abs(dir); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}
}

// New creates a Watcher for root.
func New(root string, rebuild RebuildFunc, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		rebuild:  rebuild,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		ready:    make(chan struct{}),
		newFS:    fsnotify.NewWatcher,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once the directory tree is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. It waits for a running rebuild to
// finish before returning.
func (w *Watcher) Run(ctx context.Context) error {
	absRoot, err := filepath.Abs(w.root)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryWatch, "resolve watch directory").Build()
	}
	if st, statErr := os.Stat(absRoot); statErr != nil || !st.IsDir() {
		return ferrors.NotFoundError("watch directory not found or not a directory").
			WithContext("path", absRoot).
			Build()
	}

	fsw, err := w.newFS()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryWatch, "create file watcher").Build()
	}
	defer func() { _ = fsw.Close() }()

	w.addDirsRecursive(fsw, absRoot)

	rebuildReq := make(chan struct{}, 1)
	trigger, stop := newDebouncer(w.debounce, rebuildReq)
	defer stop()

	// The worker stops on every return path, not only when the caller cancels.
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.rebuildWorker(ctx, rebuildReq)
	}()
	defer wg.Wait()
	defer cancel()

	if w.rescan > 0 {
		sched, err := newRescanScheduler(w.rescan, rebuildReq)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Warn("Rescan scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	w.logger.Info("Watching for changes", logfields.Path(absRoot))
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev, trigger)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// newDebouncer returns a trigger that sends on req once no trigger has fired
// for d. stop cancels a pending send.
func newDebouncer(d time.Duration, req chan<- struct{}) (trigger, stop func()) {
	var mu sync.Mutex
	var timer *time.Timer

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

// rebuildWorker runs rebuilds one at a time. The buffered request channel
// coalesces changes seen while a rebuild runs into one follow-up.
func (w *Watcher) rebuildWorker(ctx context.Context, req <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-req:
			start := time.Now()
			w.logger.Info("Change detected; converting")
			if err := w.rebuild(ctx); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Error(err))
				continue
			}
			w.logger.Debug("Rebuild finished", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if ShouldIgnore(ev.Name) || w.ignored(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fsw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") || w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether a change to path should not trigger a rebuild.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including editor locks like .#name
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
