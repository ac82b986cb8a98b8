package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	spans            *prom.CounterVec
	directives       *prom.CounterVec
	renderResults    *prom.CounterVec
	renderDuration   *prom.HistogramVec
	documentDuration prom.Histogram
	documentOutcomes *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.spans = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mathspan",
			Name:      "spans_total",
			Help:      "Math spans recognized by kind",
		}, []string{"kind"})
		pr.directives = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mathspan",
			Name:      "directives_total",
			Help:      "Directives attached to math spans by span kind",
		}, []string{"kind"})
		pr.renderResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mathspan",
			Name:      "render_results_total",
			Help:      "Render results by span kind and outcome",
		}, []string{"kind", "result"})
		pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "mathspan",
			Name:      "render_duration_seconds",
			Help:      "Duration of individual render service calls",
			Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"kind"})
		pr.documentDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "mathspan",
			Name:      "document_duration_seconds",
			Help:      "Duration of converting one Markdown document",
			Buckets:   prom.DefBuckets,
		})
		pr.documentOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mathspan",
			Name:      "document_outcomes_total",
			Help:      "Document conversions by outcome",
		}, []string{"outcome"})
		reg.MustRegister(pr.spans, pr.directives, pr.renderResults, pr.renderDuration, pr.documentDuration, pr.documentOutcomes)
	})
	return pr
}

func (p *PrometheusRecorder) IncSpans(kind string, n int) {
	if p == nil || p.spans == nil || n <= 0 {
		return
	}
	p.spans.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncDirectives(kind string, n int) {
	if p == nil || p.directives == nil || n <= 0 {
		return
	}
	p.directives.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncRenderResult(kind string, result ResultLabel) {
	if p == nil || p.renderResults == nil {
		return
	}
	p.renderResults.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(kind string, d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveDocumentDuration(d time.Duration) {
	if p == nil || p.documentDuration == nil {
		return
	}
	p.documentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentOutcome(outcome DocumentOutcomeLabel) {
	if p == nil || p.documentOutcomes == nil {
		return
	}
	p.documentOutcomes.WithLabelValues(string(outcome)).Inc()
}
