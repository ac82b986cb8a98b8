package metrics

import "time"

// ResultLabel enumerates render result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFallback ResultLabel = "fallback"
)

// DocumentOutcomeLabel enumerates per-document conversion outcomes.
type DocumentOutcomeLabel string

const (
	DocumentConverted DocumentOutcomeLabel = "converted"
	DocumentSkipped   DocumentOutcomeLabel = "skipped"
	DocumentFailed    DocumentOutcomeLabel = "failed"
)

// Recorder defines observability hooks for math span scanning, rendering and
// document conversion. Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	IncSpans(kind string, n int)
	IncDirectives(kind string, n int)
	IncRenderResult(kind string, result ResultLabel)
	ObserveRenderDuration(kind string, d time.Duration)
	ObserveDocumentDuration(d time.Duration)
	IncDocumentOutcome(outcome DocumentOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncSpans(string, int)                        {}
func (NoopRecorder) IncDirectives(string, int)                   {}
func (NoopRecorder) IncRenderResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) ObserveDocumentDuration(time.Duration)       {}
func (NoopRecorder) IncDocumentOutcome(DocumentOutcomeLabel)     {}
