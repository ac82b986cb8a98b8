package mathscan

import "strings"

// Inline tries to read a $...$ span at s.Pos, which must hold a '$'. It returns
// false only when it does not; otherwise it always advances s.Pos, either past
// a math span (pushing a math token unless silent) or past the delimiter
// characters it gave up on, which are recorded as pending literal text.
// A directive after the span may continue into s.Tail.
func (sc *Scanner) Inline(s *State, silent bool) bool {
	if s.Pos >= s.PosMax || s.Src[s.Pos] != '$' {
		return false
	}

	if !ValidateDelimiter(s, s.Pos).CanOpen {
		s.literal("$", silent)
		s.Pos++
		return true
	}

	start := s.Pos + 1
	match := findCloser(s, start)
	if match < 0 {
		s.literal("$", silent)
		s.Pos = start
		return true
	}

	if match == start {
		s.literal("$$", silent)
		s.Pos = start + 1
		return true
	}

	if !ValidateDelimiter(s, match).CanClose {
		s.literal("$", silent)
		s.Pos = start
		return true
	}

	idx := -1
	if !silent {
		tok := s.Push(KindInline, InlineMarkup)
		tok.Content = s.Src[start:match]
		idx = len(s.Tokens) - 1
	}
	s.Pos = match + 1

	if d := sc.Directive(s.Src[s.Pos:s.PosMax] + s.Tail); d.Consumed() {
		if !silent {
			s.attachDirective(idx, d.Content)
		}
		s.Pos += d.EndOffset
	}
	return true
}

// findCloser returns the position of the first '$' at or after from that is
// preceded by an even number of backslashes, or -1.
func findCloser(s *State, from int) int {
	match := from
	for match < s.PosMax {
		i := strings.IndexByte(s.Src[match:s.PosMax], '$')
		if i < 0 {
			return -1
		}
		match += i

		pos := match - 1
		for pos >= 0 && s.Src[pos] == '\\' {
			pos--
		}
		if (match-pos)%2 == 1 {
			return match
		}
		match++
	}
	return -1
}
