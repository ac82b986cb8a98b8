package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/retry"
)

var noRetry = retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 0)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	pubErr   error
	pubCalls int
	failures int
	flushErr error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.pubCalls++
	if f.pubErr != nil {
		return f.pubErr
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("temporarily unavailable")
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) FlushWithContext(context.Context) error { return f.flushErr }
func (f *fakeConn) Close()                                 { f.closed = true }

func TestNATSPublisher_Notify(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "docs", noRetry)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	err := p.Notify(context.Background(), Event{Type: EventDocumentConverted, RunID: "r1", Source: "a.md", Output: "a.html", Spans: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"docs.document.converted"}, fc.subjects)

	var got Event
	require.NoError(t, json.Unmarshal(fc.payloads[0], &got))
	assert.Equal(t, Event{Type: EventDocumentConverted, RunID: "r1", Source: "a.md", Output: "a.html", Spans: 2, Timestamp: fixed}, got)

	p.Close()
	assert.True(t, fc.closed)
}

func TestNATSPublisher_Errors(t *testing.T) {
	p := newPublisher(&fakeConn{pubErr: errors.New("boom")}, DefaultSubject, noRetry)
	require.ErrorContains(t, p.Notify(context.Background(), Event{Type: EventRunCompleted}), "publish")

	p = newPublisher(&fakeConn{flushErr: errors.New("slow")}, DefaultSubject, noRetry)
	require.ErrorContains(t, p.Notify(context.Background(), Event{Type: EventRunCompleted}), "flush")
}

func TestNewNATSPublisher_ConnectFailure(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "", noRetry, nats.Timeout(200*time.Millisecond))
	require.Error(t, err)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryConfig, ce.Category())
	assert.True(t, ce.CanRetry())
}

func TestNATSPublisher_RetriesTransientFailures(t *testing.T) {
	fc := &fakeConn{failures: 2}
	p := newPublisher(fc, DefaultSubject, retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 2))

	require.NoError(t, p.Notify(context.Background(), Event{Type: EventRunCompleted}))
	assert.Equal(t, []string{"mathspan.run.completed"}, fc.subjects)
}

func TestNATSPublisher_ClosedConnectionIsNotRetried(t *testing.T) {
	fc := &fakeConn{pubErr: nats.ErrConnectionClosed}
	p := newPublisher(fc, DefaultSubject, retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 3))

	err := p.Notify(context.Background(), Event{Type: EventRunCompleted})
	require.ErrorIs(t, err, nats.ErrConnectionClosed)
	assert.True(t, ferrors.Permanent(err))
	assert.Equal(t, 1, fc.pubCalls)
}

func TestNATSPublisher_UnclassifiedFailuresAreRetried(t *testing.T) {
	fc := &fakeConn{pubErr: errors.New("boom")}
	p := newPublisher(fc, DefaultSubject, retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 2))

	require.Error(t, p.Notify(context.Background(), Event{Type: EventRunCompleted}))
	assert.Equal(t, 3, fc.pubCalls)
}
