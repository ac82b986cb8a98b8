package mathscan

import (
	"strings"

	"git.home.luguber.info/inful/mathspan/internal/directive"
)

// DirectiveScanKind tells whether a directive followed a math span.
type DirectiveScanKind int

const (
	NoDirective DirectiveScanKind = iota
	DirectiveFound
	// DirectiveFoundWithLineDelta is a directive whose closing parenthesis is on
	// a later line than its opening one.
	DirectiveFoundWithLineDelta
)

// DirectiveScan is the result of Scanner.Directive.
type DirectiveScan struct {
	Kind    DirectiveScanKind
	Content string
	// EndOffset is where scanning resumes, relative to the text passed to
	// Scanner.Directive: just past the closing ')' or at the end of the body.
	EndOffset int
	LineDelta int
}

// Consumed reports whether a directive was found.
func (d DirectiveScan) Consumed() bool {
	return d.Kind != NoDirective
}

// Directive looks for "(body)" at the start of remaining, the text right after
// a closed math delimiter.
//
// remaining must reach the end of the inline content the span belongs to, not
// just the end of its line. "()" is never a directive. A body the parser finds
// balanced up to the end of remaining is accepted as long as it does not
// continue onto another line.
func (sc *Scanner) Directive(remaining string) DirectiveScan {
	if remaining == "" || remaining[0] != '(' {
		return DirectiveScan{}
	}
	body := remaining[1:]
	if body == "" || body[0] == ')' {
		return DirectiveScan{}
	}

	res := sc.directives.Parse(body)
	switch res.Outcome {
	case directive.UnmatchedClose:
		if res.Offset <= 0 {
			return DirectiveScan{}
		}
		scan := DirectiveScan{
			Kind:      DirectiveFound,
			Content:   body[:res.Offset],
			EndOffset: min(res.Offset+2, len(remaining)),
		}
		if res.LineDelta > 0 {
			scan.Kind = DirectiveFoundWithLineDelta
			scan.LineDelta = res.LineDelta
		}
		return scan
	case directive.Ok:
		content := strings.TrimRight(body, "\r\n")
		if content == "" || strings.ContainsRune(content, '\n') {
			return DirectiveScan{}
		}
		return DirectiveScan{
			Kind:      DirectiveFound,
			Content:   content,
			EndOffset: len(content) + 1,
		}
	default:
		return DirectiveScan{}
	}
}
