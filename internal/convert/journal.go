package convert

import (
	"context"

	"git.home.luguber.info/inful/mathspan/internal/history"
	"git.home.luguber.info/inful/mathspan/internal/logfields"
	"git.home.luguber.info/inful/mathspan/internal/notify"
)

// Journal and notification failures never fail a conversion.

func (c *Converter) beginRun(ctx context.Context, root string) string {
	if c.journal == nil {
		return ""
	}
	id, err := c.journal.BeginRun(ctx, root)
	if err != nil {
		c.logger.Warn("Failed to journal run", logfields.Error(err))
		return ""
	}
	return id
}

func (c *Converter) recordDocument(ctx context.Context, runID string, res FileResult, convErr error) {
	var errText string
	if convErr != nil {
		errText = convErr.Error()
	}

	if c.journal != nil && runID != "" {
		if err := c.journal.RecordDocument(ctx, history.Document{
			RunID:   runID,
			Source:  res.Source,
			Output:  res.Output,
			Outcome: string(res.Outcome),
			Spans:   len(res.Spans),
			Error:   errText,
		}); err != nil {
			c.logger.Warn("Failed to journal document", logfields.File(res.Source), logfields.Error(err))
		}
	}

	var evType string
	switch res.Outcome {
	case OutcomeConverted:
		evType = notify.EventDocumentConverted
	case OutcomeFailed:
		evType = notify.EventDocumentFailed
	default:
		return
	}
	c.notify(ctx, notify.Event{
		Type:   evType,
		RunID:  runID,
		Source: res.Source,
		Output: res.Output,
		Spans:  len(res.Spans),
		Error:  errText,
	})
}

func (c *Converter) finishRun(ctx context.Context, runID string, s Summary) {
	if c.journal != nil && runID != "" {
		if err := c.journal.FinishRun(ctx, runID, history.Totals{
			Converted: s.Converted,
			Skipped:   s.Skipped,
			Failed:    s.Failed,
			Spans:     s.Spans,
		}); err != nil {
			c.logger.Warn("Failed to journal run totals", logfields.Error(err))
		}
	}
	c.notify(ctx, notify.Event{Type: notify.EventRunCompleted, RunID: runID, Spans: s.Spans})
}

func (c *Converter) notify(ctx context.Context, ev notify.Event) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, ev); err != nil {
		c.logger.Warn("Failed to publish event", logfields.Kind(ev.Type), logfields.Error(err))
	}
}
