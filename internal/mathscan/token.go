package mathscan

// Kind identifies the type of a Token.
type Kind string

const (
	KindText      Kind = "text"
	KindInline    Kind = "math_inline"
	KindBlock     Kind = "math_block"
	KindDirective Kind = "math_directive"
)

const (
	InlineMarkup    = "$"
	BlockMarkup     = "$$"
	DirectiveMarkup = `\style`
)

// Directive is the body of a parenthesized directive, without the parentheses.
type Directive struct {
	Content string
}

// Token is one entry of the scanner output stream.
//
// A math token whose span is followed by a directive carries it in Directive and
// is immediately followed by a KindDirective token with the same content.
type Token struct {
	Kind    Kind
	Content string
	Markup  string
	Block   bool
	// Map is the [start, end) source line range of a block token.
	Map       [2]int
	Directive *Directive
}

// IsMath reports whether the token is an inline or block math span.
func (t Token) IsMath() bool {
	return t.Kind == KindInline || t.Kind == KindBlock
}

// DirectiveText returns the attached directive content or "".
func (t Token) DirectiveText() string {
	if t.Directive == nil {
		return ""
	}
	return t.Directive.Content
}
