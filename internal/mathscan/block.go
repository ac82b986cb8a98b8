package mathscan

import "strings"

const blockDirectiveOpen = "$$("

// Block tries to read a $$...$$ block starting at startLine, searching for the
// closing marker on lines before endLine. On success it pushes the block token
// (and a directive token when one follows the closer) and moves s.Line past
// everything it consumed.
//
// In silent mode only the opening marker is checked.
func (sc *Scanner) Block(s *State, startLine, endLine int, silent bool) bool {
	pos := s.BMarks[startLine] + s.TShift[startLine]
	eol := s.EMarks[startLine]
	if pos+2 > eol || s.Src[pos:pos+2] != BlockMarkup {
		return false
	}
	pos += 2
	firstLine := s.Src[pos:eol]

	if silent {
		return true
	}

	closeAt := -1
	singleLine := false
	if trimmed := strings.TrimSpace(firstLine); strings.HasSuffix(trimmed, BlockMarkup) {
		closeAt = pos + strings.LastIndex(firstLine, BlockMarkup)
		firstLine = trimmed[:len(trimmed)-len(BlockMarkup)]
		singleLine = true
	} else if i := strings.LastIndex(firstLine, blockDirectiveOpen); i >= 0 {
		closeAt = pos + i
		firstLine = strings.TrimSpace(firstLine[:i])
		singleLine = true
	}

	next := startLine
	lastLine := ""
	for closeAt < 0 {
		next++
		if next >= endLine {
			break
		}
		pos = s.BMarks[next] + s.TShift[next]
		eol = s.EMarks[next]
		if pos < eol && s.TShift[next] < s.BlkIndent {
			// a non-empty line indented less than the enclosing block ends it
			break
		}

		line := s.Src[pos:eol]
		if strings.HasSuffix(strings.TrimSpace(line), BlockMarkup) {
			i := strings.LastIndex(line, BlockMarkup)
			closeAt = pos + i
			lastLine = line[:i]
		} else if i := strings.LastIndex(line, blockDirectiveOpen); i >= 0 {
			closeAt = pos + i
			lastLine = line[:i]
		}
	}
	if closeAt < 0 {
		return false
	}

	var content string
	if singleLine {
		content = firstLine
	} else {
		var b strings.Builder
		if strings.TrimSpace(firstLine) != "" {
			b.WriteString(firstLine)
			b.WriteByte('\n')
		}
		b.WriteString(s.GetLines(startLine+1, next, s.TShift[startLine], true))
		if strings.TrimSpace(lastLine) != "" {
			b.WriteString(lastLine)
		}
		content = b.String()
	}
	if strings.TrimSpace(content) == "" {
		return false
	}

	s.Line = next + 1
	tok := s.Push(KindBlock, BlockMarkup)
	tok.Block = true
	tok.Content = content
	tok.Map = [2]int{startLine, s.Line}
	idx := len(s.Tokens) - 1

	after := closeAt + len(BlockMarkup)
	if d := sc.Directive(s.Src[after:s.PosMax]); d.Consumed() {
		s.attachDirective(idx, d.Content)
		s.Line += d.LineDelta
	}
	return true
}
