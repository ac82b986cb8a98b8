// Package markdown parses and renders Markdown bodies with math span support.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/mathspan/internal/mathext"
	"git.home.luguber.info/inful/mathspan/internal/mathscan"
)

// Options controls how Markdown is parsed and rendered.
type Options struct {
	// Math configures the math extension. A nil slice still enables it with
	// the built-in expression renderer.
	Math []mathext.Option
	// DisableMath parses the body as plain Markdown.
	DisableMath bool
	// GFM enables tables, strikethrough, autolinks and task lists.
	GFM bool
}

// Span is a math span found in a document.
type Span struct {
	Kind      mathscan.Kind `json:"kind"`
	Content   string        `json:"content"`
	Directive string        `json:"directive,omitempty"`
	// Lines is the [start, end) source line range of a block span.
	Lines *[2]int `json:"lines,omitempty"`
}

// Result is a rendered document.
type Result struct {
	HTML  []byte
	Spans []Span
}

// Engine is a configured goldmark instance. It is safe for concurrent use.
type Engine struct {
	md goldmark.Markdown
}

// New builds an Engine.
func New(opts Options) *Engine {
	var exts []goldmark.Extender
	if !opts.DisableMath {
		exts = append(exts, mathext.New(opts.Math...))
	}
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	return &Engine{md: goldmark.New(goldmark.WithExtensions(exts...))}
}

// Parse parses a Markdown body (frontmatter already removed).
func (e *Engine) Parse(body []byte) gmast.Node {
	return e.md.Parser().Parse(text.NewReader(body))
}

// Render converts body to HTML and reports the math spans it contains.
func (e *Engine) Render(body []byte) (*Result, error) {
	root := e.Parse(body)
	var buf bytes.Buffer
	if err := e.md.Renderer().Render(&buf, body, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return &Result{HTML: buf.Bytes(), Spans: CollectMath(root)}, nil
}

// ParseBody parses a Markdown body (frontmatter already removed) into a Goldmark AST.
func ParseBody(body []byte, opts Options) (gmast.Node, error) {
	return New(opts).Parse(body), nil
}

// ExtractMath parses a Markdown body and lists its math spans in document order.
//
// This is an analysis API; nothing is rendered.
func ExtractMath(body []byte, opts Options) ([]Span, error) {
	root, err := ParseBody(body, opts)
	if err != nil {
		return nil, err
	}
	return CollectMath(root), nil
}

// CollectMath walks a parsed document for math nodes.
func CollectMath(root gmast.Node) []Span {
	spans := make([]Span, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *mathext.Inline:
			spans = append(spans, Span{Kind: mathscan.KindInline, Content: node.Content, Directive: node.Directive})
		case *mathext.Block:
			lines := node.LineRange
			spans = append(spans, Span{Kind: mathscan.KindBlock, Content: node.Content, Directive: node.Directive, Lines: &lines})
		}
		return gmast.WalkContinue, nil
	})
	return spans
}

// CountKinds returns the number of spans and of directives per kind.
func CountKinds(spans []Span) (total, directives map[mathscan.Kind]int) {
	total = make(map[mathscan.Kind]int)
	directives = make(map[mathscan.Kind]int)
	for _, s := range spans {
		total[s.Kind]++
		if s.Directive != "" {
			directives[s.Kind]++
		}
	}
	return total, directives
}
