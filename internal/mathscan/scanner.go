package mathscan

import "git.home.luguber.info/inful/mathspan/internal/directive"

// DirectiveParser finds where a directive body ends. See package directive for
// the result contract.
type DirectiveParser interface {
	Parse(text string) directive.Result
}

// Scanner recognizes math spans and their trailing directives. It holds no
// per-document state and may be shared between goroutines as long as each
// goroutine scans its own State.
type Scanner struct {
	directives DirectiveParser
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDirectiveParser replaces the default directive parser.
func WithDirectiveParser(p DirectiveParser) Option {
	return func(sc *Scanner) {
		if p != nil {
			sc.directives = p
		}
	}
}

// New returns a Scanner using directive.NewParser unless overridden.
func New(opts ...Option) *Scanner {
	sc := &Scanner{directives: directive.NewParser()}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// literal records text that was consumed without producing a math span.
func (s *State) literal(text string, silent bool) {
	if !silent {
		s.Pending.WriteString(text)
	}
}

// attachDirective links a directive to the math token at idx and pushes the
// directive token right after it.
func (s *State) attachDirective(idx int, content string) {
	s.Tokens[idx].Directive = &Directive{Content: content}
	tok := s.Push(KindDirective, DirectiveMarkup)
	tok.Content = content
}
