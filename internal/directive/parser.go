package directive

import "fmt"

// Outcome classifies how a balanced-bracket scan over a directive remainder ended.
type Outcome int

const (
	Ok Outcome = iota
	UnexpectedToken
	UnmatchedClose
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case UnexpectedToken:
		return "unexpected_token"
	case UnmatchedClose:
		return "unmatched_close"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of Parser.Parse.
type Result struct {
	Outcome Outcome
	// AST is only populated for Ok.
	AST AST
	// Found is the offending token for UnexpectedToken; empty at end of input.
	Found string
	// Offset is the byte offset where the scan stopped.
	Offset int
	// LineDelta counts the line breaks between the start of the text and Offset.
	LineDelta int
}

// Parser scans directive text for balanced (), [] and {} pairs. Double-quoted
// strings are opaque; a backslash escapes the next byte inside them.
type Parser struct{}

// NewParser returns the default directive parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse scans text and reports where balanced-bracket matching stopped.
func (p *Parser) Parse(text string) Result {
	var stack []byte
	inString := false
	lines := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			lines++
		}
		if inString {
			switch c {
			case '\\':
				if i+1 < len(text) && text[i+1] == '\n' {
					lines++
				}
				i++
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 {
				if c == ')' {
					return Result{Outcome: UnmatchedClose, Found: ")", Offset: i, LineDelta: lines}
				}
				return Result{Outcome: UnexpectedToken, Found: string(c), Offset: i, LineDelta: lines}
			}
			if stack[len(stack)-1] != openerFor(c) {
				return Result{Outcome: UnexpectedToken, Found: string(c), Offset: i, LineDelta: lines}
			}
			stack = stack[:len(stack)-1]
		}
	}

	if inString || len(stack) > 0 {
		return Result{Outcome: UnexpectedToken, Offset: len(text), LineDelta: lines}
	}
	return Result{Outcome: Ok, AST: ParseEntries(text), Offset: len(text), LineDelta: lines}
}

func openerFor(closer byte) byte {
	switch closer {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}
