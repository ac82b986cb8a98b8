package render

import (
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/logfields"
	"git.home.luguber.info/inful/mathspan/internal/mathscan"
	"git.home.luguber.info/inful/mathspan/internal/metrics"
)

const (
	blockOpen  = `<p align="center">`
	blockClose = `</p>`
)

// Result is the outcome of rendering one span.
type Result struct {
	// Markup is the rendered output, or the raw content when Fallback is set.
	Markup   string
	Fallback bool
	Err      error
}

// Adapter calls a Service for each math span. It never returns an error to
// its caller; failures degrade to the raw expression.
type Adapter struct {
	service  Service
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger used for render failures.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) AdapterOption {
	return func(a *Adapter) {
		if r != nil {
			a.recorder = r
		}
	}
}

// NewAdapter creates an adapter. opts is copied.
func NewAdapter(service Service, opts Options, options ...AdapterOption) *Adapter {
	a := &Adapter{
		service:  service,
		opts:     opts.clone(),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Options returns a copy of the adapter's base configuration.
func (a *Adapter) Options() Options {
	return a.opts.clone()
}

// Render renders tokens[idx]. The directive is the one attached to the token,
// or else the content of an immediately following directive token.
func (a *Adapter) Render(tokens []mathscan.Token, idx int) string {
	if idx < 0 || idx >= len(tokens) {
		return ""
	}
	tok := tokens[idx]
	directive := tok.DirectiveText()
	if tok.Directive == nil && idx+1 < len(tokens) && tokens[idx+1].Kind == mathscan.KindDirective {
		directive = tokens[idx+1].Content
	}
	return a.RenderSpan(tok.Kind, tok.Content, directive).Markup
}

// RenderSpan renders one span of the given kind.
func (a *Adapter) RenderSpan(kind mathscan.Kind, content, directive string) Result {
	display := kind == mathscan.KindBlock
	params := Params{
		Options:     a.opts.clone(),
		DisplayMode: display,
		Style:       a.opts.EffectiveStyle(directive),
	}

	start := time.Now()
	out, err := a.call(content, params)
	a.recorder.ObserveRenderDuration(string(kind), time.Since(start))

	if err != nil {
		a.recorder.IncRenderResult(string(kind), metrics.ResultFallback)
		classified := ferrors.WrapError(err, ferrors.CategoryRender, "render math span").
			WithContext(logfields.KeyKind, string(kind)).
			WithContext(logfields.KeyContent, content).
			Build()
		a.report(kind, content, directive, classified)
		return Result{Markup: content, Fallback: true, Err: classified}
	}

	a.recorder.IncRenderResult(string(kind), metrics.ResultSuccess)
	if display {
		out = blockOpen + out + blockClose
	}
	return Result{Markup: out}
}

func (a *Adapter) call(content string, p Params) (string, error) {
	if a.service == nil {
		return "", ferrors.InternalError("no render service configured").Build()
	}
	return a.service.RenderToString(content, p.Style, p)
}

func (a *Adapter) report(kind mathscan.Kind, content, directive string, err error) {
	attrs := []any{
		logfields.Kind(string(kind)),
		logfields.Content(content),
		logfields.Error(err),
	}
	if directive != "" {
		attrs = append(attrs, logfields.Directive(directive))
	}
	if a.opts.ThrowOnError {
		a.logger.Error("Math render failed", attrs...)
		return
	}
	a.logger.Debug("Math render failed, using raw expression", attrs...)
}
