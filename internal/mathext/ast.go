package mathext

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
)

// KindInline is the node kind of inline math spans.
var KindInline = ast.NewNodeKind("MathInline")

// KindBlock is the node kind of block math spans.
var KindBlock = ast.NewNodeKind("MathBlock")

// Inline is a $...$ span.
type Inline struct {
	ast.BaseInline
	Content   string
	Directive string
}

// NewInline returns an inline math node.
func NewInline(content, directive string) *Inline {
	return &Inline{Content: content, Directive: directive}
}

// Kind implements ast.Node.
func (n *Inline) Kind() ast.NodeKind {
	return KindInline
}

// Dump implements ast.Node.
func (n *Inline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Content":   n.Content,
		"Directive": n.Directive,
	}, nil)
}

// Block is a $$...$$ span.
type Block struct {
	ast.BaseBlock
	Content   string
	Directive string
	// LineRange is the [start, end) range of source lines holding the
	// delimiters and content, not counting directive continuation lines.
	LineRange [2]int

	// lines the parser still has to consume after the opening line
	pending int
}

// NewBlock returns a block math node.
func NewBlock(content, directive string) *Block {
	return &Block{Content: content, Directive: directive}
}

// Kind implements ast.Node.
func (n *Block) Kind() ast.NodeKind {
	return KindBlock
}

// IsRaw reports true; block content is never parsed as Markdown.
func (n *Block) IsRaw() bool {
	return true
}

// Dump implements ast.Node.
func (n *Block) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Content":   n.Content,
		"Directive": n.Directive,
		"Lines":     fmt.Sprintf("%d-%d", n.LineRange[0], n.LineRange[1]),
	}, nil)
}
