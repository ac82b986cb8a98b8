// Package notify publishes conversion events to NATS so that other services
// (search indexers, cache purgers) can react to regenerated pages.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/logfields"
	"git.home.luguber.info/inful/mathspan/internal/retry"
)

// DefaultSubject prefixes every published subject.
const DefaultSubject = "mathspan"

// Event types.
const (
	EventDocumentConverted = "document.converted"
	EventDocumentFailed    = "document.failed"
	EventRunCompleted      = "run.completed"
)

// Event is the JSON payload published for each conversion step.
type Event struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Output    string    `json:"output,omitempty"`
	Spans     int       `json:"spans"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives conversion events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events on <subject>.<event type>.
type NATSPublisher struct {
	conn    conn
	subject string
	policy  retry.Policy
	now     func() time.Time
}

// NewNATSPublisher connects to url. Failed publishes are retried per policy.
func NewNATSPublisher(url, subject string, policy retry.Policy, opts ...nats.Option) (*NATSPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	opts = append([]nats.Option{nats.Name("mathspan")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to connect to NATS").
			WithContext("url", url).
			Retryable().
			Build()
	}
	slog.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return newPublisher(nc, subject, policy), nil
}

func newPublisher(c conn, subject string, policy retry.Policy) *NATSPublisher {
	return &NATSPublisher{conn: c, subject: subject, policy: policy, now: time.Now}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.subject + "." + eventType
}

// Notify publishes ev and flushes so that delivery errors surface here.
func (p *NATSPublisher) Notify(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = p.now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := p.Subject(ev.Type)
	err = p.policy.Do(ctx, func() error {
		if err := p.conn.Publish(subject, data); err != nil {
			return publishError(err)
		}
		flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.conn.FlushWithContext(flushCtx); err != nil {
			return fmt.Errorf("failed to flush event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Published conversion event", slog.String("subject", subject), logfields.File(ev.Source))
	return nil
}

// publishError marks failures that no retry can fix, such as a closed
// connection or an invalid subject, as permanent.
func publishError(err error) error {
	switch {
	case errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrBadSubject),
		errors.Is(err, nats.ErrMaxPayload):
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to publish event").Build()
	default:
		return fmt.Errorf("failed to publish event: %w", err)
	}
}

// Close closes the connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}
