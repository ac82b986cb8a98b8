package mathscan

// Verdict says whether a '$' may open and/or close a math span.
type Verdict struct {
	CanOpen  bool
	CanClose bool
}

// ValidateDelimiter inspects the characters around the '$' at pos. Neighbours
// outside the source (or beyond PosMax) read as -1.
//
// A '$' preceded by a space or tab, or followed by a digit, cannot close
// ("$5 and $10" is currency). A '$' followed by a space or tab cannot open.
func ValidateDelimiter(s *State, pos int) Verdict {
	prev, next := -1, -1
	if pos > 0 {
		prev = int(s.Src[pos-1])
	}
	if pos+1 < s.PosMax {
		next = int(s.Src[pos+1])
	}

	v := Verdict{CanOpen: true, CanClose: true}
	if prev == ' ' || prev == '\t' || (next >= '0' && next <= '9') {
		v.CanClose = false
	}
	if next == ' ' || next == '\t' {
		v.CanOpen = false
	}
	return v
}
