// Package history journals conversion runs so that past results can be
// listed after the process exits.
package history

import (
	"context"
	"time"
)

// Totals are the per-outcome document counts of a run.
type Totals struct {
	Converted int
	Skipped   int
	Failed    int
	Spans     int
}

// Run is one ConvertTree pass.
type Run struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Totals
}

// Document is the journal entry for one converted, skipped or failed file.
type Document struct {
	RunID      string
	Source     string
	Output     string
	Outcome    string
	Spans      int
	Error      string
	RecordedAt time.Time
}

// Store defines the interface for persisting and retrieving runs.
type Store interface {
	// BeginRun opens a run and returns its identifier.
	BeginRun(ctx context.Context, source string) (string, error)

	// RecordDocument appends a document entry to a run.
	RecordDocument(ctx context.Context, doc Document) error

	// FinishRun stores the totals of a run.
	FinishRun(ctx context.Context, runID string, totals Totals) error

	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Documents returns the entries of a run in recording order.
	Documents(ctx context.Context, runID string) ([]Document, error)

	// Close closes the store and releases resources.
	Close() error
}
