package mathscan

// Tokenize scans src the way a minimal line-oriented host would: every line is
// first offered to the block scanner, and lines that do not start a block are
// scanned for inline spans. A directive may continue onto the following lines
// of the same paragraph. Everything else ends up in text tokens, so joining the
// text tokens of a document without any '$' reproduces it.
func (sc *Scanner) Tokenize(src string) []Token {
	s := NewBlockState(src)
	for s.Line < s.LineMax {
		start := s.Line
		s.PosMax = len(src)
		s.Tail = ""
		if sc.Block(s, start, s.LineMax, false) {
			continue
		}

		end := paragraphEnd(s, start)
		line := start
		s.Pos = s.BMarks[start]
		for {
			s.PosMax = lineEnd(s, line)
			s.Tail = src[s.PosMax:end]
			for s.Pos < s.PosMax {
				if s.Src[s.Pos] == '$' && sc.Inline(s, false) {
					continue
				}
				s.Pending.WriteByte(s.Src[s.Pos])
				s.Pos++
			}
			if s.Pos == s.PosMax || s.Pos >= len(src) {
				break
			}
			// a directive ran into a later line; resume scanning right after it
			line = lineAt(s, s.Pos)
		}
		s.Tail = ""
		s.Line = line + 1
	}
	s.flushPending()
	return s.Tokens
}

// lineEnd is the offset just past line's line break.
func lineEnd(s *State, line int) int {
	return min(s.EMarks[line]+1, len(s.Src))
}

// lineAt returns the line holding offset pos.
func lineAt(s *State, pos int) int {
	for line := s.Line; line < s.LineMax; line++ {
		if pos < lineEnd(s, line) {
			return line
		}
	}
	return s.LineMax - 1
}

// paragraphEnd returns the offset where the paragraph starting at line ends:
// the start of the next blank line, or the end of the source.
func paragraphEnd(s *State, line int) int {
	for l := line + 1; l < s.LineMax; l++ {
		if s.BMarks[l]+s.TShift[l] >= s.EMarks[l] {
			return s.BMarks[l]
		}
	}
	return len(s.Src)
}
