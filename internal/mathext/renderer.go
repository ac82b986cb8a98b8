package mathext

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/mathspan/internal/mathscan"
	"git.home.luguber.info/inful/mathspan/internal/render"
)

// Renderer writes math nodes through a render.Adapter. Markup from the
// render service is written as is; fallback text is HTML-escaped.
type Renderer struct {
	adapter *render.Adapter
}

// NewRenderer returns a node renderer for Inline and Block nodes.
func NewRenderer(adapter *render.Adapter) renderer.NodeRenderer {
	return &Renderer{adapter: adapter}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *Renderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindInline, r.renderInline)
	reg.Register(KindBlock, r.renderBlock)
}

func (r *Renderer) renderInline(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Inline)
	write(w, r.adapter.RenderSpan(mathscan.KindInline, n.Content, n.Directive))
	return ast.WalkSkipChildren, nil
}

func (r *Renderer) renderBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Block)
	write(w, r.adapter.RenderSpan(mathscan.KindBlock, n.Content, n.Directive))
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

func write(w util.BufWriter, res render.Result) {
	if res.Fallback {
		_, _ = w.Write(util.EscapeHTML([]byte(res.Markup)))
		return
	}
	_, _ = w.WriteString(res.Markup)
}
