package watch

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
)

func TestShouldIgnore(t *testing.T) {
	cases := map[string]bool{
		"docs/page.md":        false,
		"docs/.page.md.swp":   true,
		"docs/page.md~":       true,
		"docs/#page.md#":      true,
		"docs/.#page.md":      true,
		"docs/.DS_Store":      true,
		"docs/Thumbs.db":      true,
		"docs/page.swx":       true,
		"docs/sub/index.md":   false,
		"docs/notes#draft.md": false,
	}
	for path, want := range cases {
		assert.Equal(t, want, ShouldIgnore(path), path)
	}
}

func TestDebouncer_CoalescesTriggers(t *testing.T) {
	req := make(chan struct{}, 1)
	trigger, stop := newDebouncer(20*time.Millisecond, req)
	defer stop()

	for range 10 {
		trigger()
	}
	select {
	case <-req:
	case <-time.After(2 * time.Second):
		t.Fatal("no rebuild request after debounce")
	}
	select {
	case <-req:
		t.Fatal("triggers were not coalesced")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopCancelsPendingSend(t *testing.T) {
	req := make(chan struct{}, 1)
	trigger, stop := newDebouncer(20*time.Millisecond, req)
	trigger()
	stop()
	select {
	case <-req:
		t.Fatal("stopped debouncer still fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRebuildWorker_RunsOneAtATime(t *testing.T) {
	var running, maxRunning, calls atomic.Int32
	release := make(chan struct{})
	w := New(t.TempDir(), func(context.Context) error {
		n := running.Add(1)
		if n > maxRunning.Load() {
			maxRunning.Store(n)
		}
		<-release
		running.Add(-1)
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	req := make(chan struct{}, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.rebuildWorker(ctx, req)
	}()

	req <- struct{}{}
	require.Eventually(t, func() bool { return running.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	// Requests during a rebuild collapse into the single buffered slot.
	req <- struct{}{}
	select {
	case req <- struct{}{}:
		t.Fatal("request buffer should be full")
	default:
	}

	close(release)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), maxRunning.Load())

	cancel()
	wg.Wait()
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "html")
	require.NoError(t, os.MkdirAll(out, 0o750))

	var calls atomic.Int32
	w := New(root, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond), WithIgnoredDir(out))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not become ready")
	}

	require.NoError(t, os.WriteFile(filepath.Join(out, "page.html"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.md"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(root, "page.md"), []byte("$x$"), 0o600))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_ReturnsWhenEventStreamCloses(t *testing.T) {
	w := New(t.TempDir(), func(context.Context) error { return nil })
	created := make(chan *fsnotify.Watcher, 1)
	w.newFS = func() (*fsnotify.Watcher, error) {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			created <- fsw
		}
		return fsw, err
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not become ready")
	}
	require.NoError(t, (<-created).Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the event stream closed")
	}
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent"), func(context.Context) error { return nil })
	err := w.Run(context.Background())
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryNotFound, ce.Category())
}

func TestMetricsServer(t *testing.T) {
	srv, err := ListenMetrics("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "mathspan_up 1\n")
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "mathspan_up 1\n", string(body))

	cancel()
	require.NoError(t, <-done)
}

func TestListenMetrics_PortInUse(t *testing.T) {
	first, err := ListenMetrics("127.0.0.1:0", http.NotFoundHandler())
	require.NoError(t, err)
	defer func() { _ = first.ln.Close() }()

	_, err = ListenMetrics(first.Addr(), http.NotFoundHandler())
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryConfig, ce.Category())
}

func TestWatcher_PeriodicRescan(t *testing.T) {
	var calls atomic.Int32
	w := New(t.TempDir(), func(context.Context) error {
		calls.Add(1)
		return nil
	}, WithRescan(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestNewRescanScheduler_RequestsRebuild(t *testing.T) {
	req := make(chan struct{}, 1)
	s, err := newRescanScheduler(20*time.Millisecond, req)
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Shutdown() }()

	select {
	case <-req:
	case <-time.After(5 * time.Second):
		t.Fatal("rescan job never ran")
	}
}
