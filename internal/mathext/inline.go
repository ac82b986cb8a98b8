package mathext

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/mathspan/internal/mathscan"
)

type inlineParser struct {
	scanner *mathscan.Scanner
}

// NewInlineParser returns a parser for $...$ spans within the current line.
func NewInlineParser(scanner *mathscan.Scanner) parser.InlineParser {
	return &inlineParser{scanner: scanner}
}

func (p *inlineParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse returns a math node, or a text node covering the delimiter characters
// the scanner gave up on so they are not offered to it a second time.
func (p *inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) == 0 || line[0] != '$' {
		return nil
	}

	s := mathscan.NewInlineState(util.BytesToReadOnlyString(block.Source()))
	s.Pos = segment.Start
	s.PosMax = segment.Stop
	if bytes.IndexByte(line, '(') >= 0 {
		s.Tail = followingLines(block)
	}
	if !p.scanner.Inline(s, false) {
		return nil
	}

	// Pos lies past PosMax when a directive continued onto the following lines;
	// Advance moves across line boundaries by the same byte count.
	block.Advance(s.Pos - segment.Start)
	if len(s.Tokens) == 0 {
		return ast.NewTextSegment(text.NewSegment(segment.Start, s.Pos))
	}
	tok := s.Tokens[0]
	return NewInline(tok.Content, tok.DirectiveText())
}

// followingLines returns the rest of the inline content after the current line
// and leaves the reader where it was.
func followingLines(block text.Reader) string {
	line, pos := block.Position()
	defer block.SetPosition(line, pos)

	var b bytes.Buffer
	block.AdvanceLine()
	for {
		l, _ := block.PeekLine()
		if l == nil {
			break
		}
		b.Write(l)
		block.AdvanceLine()
	}
	return b.String()
}
