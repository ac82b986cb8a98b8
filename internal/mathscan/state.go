package mathscan

import "strings"

// State is the scanner's view of the source. Scanners only move the position
// fields forward, append to Pending and push tokens.
type State struct {
	Src    string
	Pos    int
	PosMax int
	// Tail is the inline content that continues past PosMax, such as the
	// following lines of a paragraph. Only a directive may run into it, so
	// Pos can end up beyond PosMax by at most len(Tail).
	Tail string
	// Pending accumulates literal text that has not been flushed into a token yet.
	Pending strings.Builder
	Tokens  []Token

	// Line table for block scanning. BMarks/EMarks hold the byte offsets of each
	// line's start and end (excluding the line break); TShift is the number of
	// leading whitespace bytes on the line.
	BMarks    []int
	EMarks    []int
	TShift    []int
	BlkIndent int
	Line      int
	LineMax   int
}

// NewInlineState returns a State spanning the whole of src.
func NewInlineState(src string) *State {
	return &State{Src: src, PosMax: len(src)}
}

// NewBlockState returns a State with the line table for src filled in.
func NewBlockState(src string) *State {
	s := &State{Src: src, PosMax: len(src)}
	start := 0
	for start <= len(src) {
		end := strings.IndexByte(src[start:], '\n')
		if end < 0 {
			end = len(src)
		} else {
			end += start
		}
		if start == len(src) && end == start {
			break
		}
		shift := 0
		for start+shift < end && (src[start+shift] == ' ' || src[start+shift] == '\t') {
			shift++
		}
		s.BMarks = append(s.BMarks, start)
		s.EMarks = append(s.EMarks, end)
		s.TShift = append(s.TShift, shift)
		start = end + 1
	}
	s.LineMax = len(s.BMarks)
	return s
}

// Push flushes pending literal text into a text token, then appends a new token.
func (s *State) Push(kind Kind, markup string) *Token {
	s.flushPending()
	s.Tokens = append(s.Tokens, Token{Kind: kind, Markup: markup})
	return &s.Tokens[len(s.Tokens)-1]
}

func (s *State) flushPending() {
	if s.Pending.Len() == 0 {
		return
	}
	text := s.Pending.String()
	s.Pending.Reset()
	if n := len(s.Tokens); n > 0 && s.Tokens[n-1].Kind == KindText {
		s.Tokens[n-1].Content += text
		return
	}
	s.Tokens = append(s.Tokens, Token{Kind: KindText, Content: text})
}

// GetLines returns the text of lines [begin, end), removing up to indent
// columns of leading whitespace from each. Tabs advance to the next multiple of
// four. The line break of the last line is kept only when keepLastLF is set.
func (s *State) GetLines(begin, end, indent int, keepLastLF bool) string {
	if begin >= end {
		return ""
	}
	var b strings.Builder
	for line := begin; line < end; line++ {
		first := s.BMarks[line]
		last := s.EMarks[line]
		if (line+1 < end || keepLastLF) && last < len(s.Src) {
			last++
		}

		col := 0
	strip:
		for first < last && col < indent {
			switch s.Src[first] {
			case ' ':
				col++
			case '\t':
				col += 4 - col%4
			default:
				break strip
			}
			first++
		}
		if col > indent {
			// a tab overshot the indent; keep the remainder as spaces
			b.WriteString(strings.Repeat(" ", col-indent))
		}
		b.WriteString(s.Src[first:last])
	}
	return b.String()
}
