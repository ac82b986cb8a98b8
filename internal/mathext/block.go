package mathext

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/mathspan/internal/mathscan"
)

type blockParser struct {
	scanner *mathscan.Scanner
}

// NewBlockParser returns a parser for $$...$$ blocks.
//
// goldmark feeds block parsers one line at a time, so Open scans ahead over
// the raw source to find the closing marker and the node then swallows the
// counted lines in Continue.
func NewBlockParser(scanner *mathscan.Scanner) parser.BlockParser {
	return &blockParser{scanner: scanner}
}

func (b *blockParser) Trigger() []byte {
	return []byte{'$'}
}

func (b *blockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos+1 >= len(line) || line[pos] != '$' || line[pos+1] != '$' {
		return nil, parser.NoChildren
	}

	view, indent := blockView(reader.Source(), segment.Start, quoteDepth(parent))
	s := mathscan.NewBlockState(view)
	s.BlkIndent = indent
	if !b.scanner.Block(s, 0, s.LineMax, false) {
		return nil, parser.NoChildren
	}

	tok := s.Tokens[0]
	lineNum, _ := reader.Position()
	node := NewBlock(tok.Content, tok.DirectiveText())
	node.LineRange = [2]int{lineNum + tok.Map[0], lineNum + tok.Map[1]}
	node.pending = s.Line - 1

	reader.Advance(segment.Stop - segment.Start - newlineLen(line) + segment.Padding)
	return node, parser.NoChildren
}

func (b *blockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*Block)
	if n.pending == 0 {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	n.pending--
	reader.Advance(segment.Stop - segment.Start - newlineLen(line) + segment.Padding)
	if n.pending == 0 {
		return parser.Close
	}
	return parser.Continue | parser.NoChildren
}

func (b *blockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *blockParser) CanInterruptParagraph() bool {
	return true
}

func (b *blockParser) CanAcceptIndentedLine() bool {
	return false
}

func newlineLen(line []byte) int {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return 1
	}
	return 0
}

// quoteDepth counts the blockquotes enclosing n.
func quoteDepth(n ast.Node) int {
	depth := 0
	for ; n != nil; n = n.Parent() {
		if n.Kind() == ast.KindBlockquote {
			depth++
		}
	}
	return depth
}

// blockView returns the source from the line holding start onward, as the
// block scanner should see it. The bytes before start on the first line are
// the container prefix: blockquote markers are dropped and anything else (a
// list marker) becomes spaces, whose count is returned as the enclosing
// indent. Inside depth blockquotes, following lines lose their markers and the
// view ends at the first line without them.
func blockView(source []byte, start, depth int) (string, int) {
	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
	quoted, _ := quotePrefix(source[lineStart:start], depth)
	indent := max(start-lineStart-quoted, 0)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indent))
	first, rest, found := bytes.Cut(source[start:], []byte{'\n'})
	b.Write(first)
	for found {
		b.WriteByte('\n')
		var line []byte
		line, rest, found = bytes.Cut(rest, []byte{'\n'})
		if depth > 0 {
			n, ok := quotePrefix(line, depth)
			if !ok {
				break
			}
			line = line[n:]
		}
		b.Write(line)
	}
	return b.String(), indent
}

// quotePrefix returns the length of depth leading blockquote markers on line.
func quotePrefix(line []byte, depth int) (int, bool) {
	i := 0
	for range depth {
		j := i
		for j < len(line) && j-i < 3 && line[j] == ' ' {
			j++
		}
		if j >= len(line) || line[j] != '>' {
			return i, false
		}
		j++
		if j < len(line) && (line[j] == ' ' || line[j] == '\t') {
			j++
		}
		i = j
	}
	return i, true
}
