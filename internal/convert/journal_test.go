package convert

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mathspan/internal/history"
	"git.home.luguber.info/inful/mathspan/internal/notify"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *captureNotifier) Notify(_ context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *captureNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestConvertTree_JournalsRun(t *testing.T) {
	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	c, src, _ := newTestConverter(t, WithHistory(store))
	writeFile(t, filepath.Join(src, "a.md"), "$x$ and $y$\n")
	writeFile(t, filepath.Join(src, "b.md"), "---\nbroken\n")

	summary, err := c.ConvertTree(context.Background(), src)
	require.Error(t, err)
	require.NotEmpty(t, summary.RunID)

	runs, err := store.Runs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].ID)
	assert.Equal(t, history.Totals{Converted: 1, Failed: 1, Spans: 2}, runs[0].Totals)

	docs, err := store.Documents(context.Background(), summary.RunID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "converted", docs[0].Outcome)
	assert.Equal(t, 2, docs[0].Spans)
	assert.Equal(t, "failed", docs[1].Outcome)
	assert.NotEmpty(t, docs[1].Error)
}

func TestConvertTree_PublishesEvents(t *testing.T) {
	n := &captureNotifier{}
	c, src, _ := newTestConverter(t, WithNotifier(n))
	writeFile(t, filepath.Join(src, "a.md"), "$x$\n")

	_, err := c.ConvertTree(context.Background(), src)
	require.NoError(t, err)
	_, err = c.ConvertTree(context.Background(), src)
	require.NoError(t, err)

	// Skipped documents publish nothing.
	assert.Equal(t, []string{
		notify.EventDocumentConverted,
		notify.EventRunCompleted,
		notify.EventRunCompleted,
	}, n.types())
}

func TestConvertTree_NotifierErrorsAreNotFatal(t *testing.T) {
	n := &captureNotifier{err: errors.New("unreachable")}
	c, src, _ := newTestConverter(t, WithNotifier(n))
	writeFile(t, filepath.Join(src, "a.md"), "$x$\n")

	summary, err := c.ConvertTree(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Converted)
}
