// Package mathext is a goldmark extension for $...$ and $$...$$ math spans
// with optional trailing (directive) annotations.
package mathext

import (
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/mathspan/internal/expr"
	"git.home.luguber.info/inful/mathspan/internal/mathscan"
	"git.home.luguber.info/inful/mathspan/internal/metrics"
	"git.home.luguber.info/inful/mathspan/internal/render"
)

// Parser priorities. Inline spans run after emphasis; blocks are tried after
// blockquotes and before HTML blocks and paragraphs.
const (
	InlinePriority   = 501
	BlockPriority    = 801
	RendererPriority = 500
)

// Extension registers the math parsers and renderer. Its configuration is
// fixed at construction, so one Extension may serve concurrent conversions.
type Extension struct {
	service    render.Service
	opts       render.Options
	recorder   metrics.Recorder
	logger     *slog.Logger
	directives mathscan.DirectiveParser

	scanner *mathscan.Scanner
	adapter *render.Adapter
}

// Option configures an Extension.
type Option func(*Extension)

// WithService sets the expression renderer. The default is expr.New().
func WithService(s render.Service) Option {
	return func(e *Extension) {
		e.service = s
	}
}

// WithOptions sets the render configuration.
func WithOptions(o render.Options) Option {
	return func(e *Extension) {
		e.opts = o
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Extension) {
		e.recorder = r
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDirectiveParser replaces the directive parser.
func WithDirectiveParser(p mathscan.DirectiveParser) Option {
	return func(e *Extension) {
		e.directives = p
	}
}

// New creates an Extension.
func New(opts ...Option) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	if e.service == nil {
		e.service = expr.New()
	}
	e.scanner = mathscan.New(mathscan.WithDirectiveParser(e.directives))
	e.adapter = render.NewAdapter(e.service, e.opts,
		render.WithLogger(e.logger),
		render.WithRecorder(e.recorder),
	)
	return e
}

// Adapter returns the render adapter used by the extension's renderer.
func (e *Extension) Adapter() *render.Adapter {
	return e.adapter
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(NewBlockParser(e.scanner), BlockPriority)),
		parser.WithInlineParsers(util.Prioritized(NewInlineParser(e.scanner), InlinePriority)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewRenderer(e.adapter), RendererPriority),
	))
}
