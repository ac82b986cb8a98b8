package mathscan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scanInline drives Scanner.Inline over src the way an inline host does.
func scanInline(src string) []Token {
	s := NewInlineState(src)
	sc := New()
	for s.Pos < s.PosMax {
		if s.Src[s.Pos] == '$' && sc.Inline(s, false) {
			continue
		}
		s.Pending.WriteByte(s.Src[s.Pos])
		s.Pos++
	}
	s.flushPending()
	return s.Tokens
}

func text(content string) Token {
	return Token{Kind: KindText, Content: content}
}

func inline(content string) Token {
	return Token{Kind: KindInline, Content: content, Markup: InlineMarkup}
}

func TestInline_Spans(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []Token
	}{
		{"simple span", "$x$", []Token{inline("x")}},
		{"span inside text", "a $x^2$ b", []Token{text("a "), inline("x^2"), text(" b")}},
		{"two spans", "$a$ and $b$", []Token{inline("a"), text(" and "), inline("b")}},
		{"escaped dollar inside", `$a\$b$`, []Token{inline(`a\$b`)}},
		{"even backslashes close", `$a\\$`, []Token{inline(`a\\`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, scanInline(tc.src))
		})
	}
}

func TestInline_LiteralFallbacks(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"space after opener", "$ x$"},
		{"empty span", "$$"},
		{"no closer", "price: $"},
		{"escaped delimiters", `\$x\$`},
		{"currency", "costs $5 and $10"},
		{"space before closer", "$x $"},
		{"digit after closer", "$x$5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, []Token{text(tc.src)}, scanInline(tc.src))
		})
	}
}

func TestInline_NotADollar(t *testing.T) {
	s := NewInlineState("x$")
	require.False(t, New().Inline(s, false))
	require.Equal(t, 0, s.Pos)
}

func TestInline_SilentAdvancesWithoutTokens(t *testing.T) {
	s := NewInlineState("$x$(bold) tail")
	require.True(t, New().Inline(s, true))
	require.Equal(t, len("$x$(bold)"), s.Pos)
	require.Empty(t, s.Tokens)
	require.Zero(t, s.Pending.Len())
}

func TestInline_AlwaysAdvances(t *testing.T) {
	for _, src := range []string{"$", "$ ", "$$", "$x", "$x $", "a $"} {
		s := NewInlineState(src)
		for i := range src {
			if src[i] != '$' {
				continue
			}
			s.Pos = i
			require.True(t, New().Inline(s, false), src)
			require.Greater(t, s.Pos, i, src)
		}
	}
}

func TestInline_Directive(t *testing.T) {
	tokens := scanInline("$x$(style: bold) after")
	require.Len(t, tokens, 3)
	require.Equal(t, KindInline, tokens[0].Kind)
	require.Equal(t, "x", tokens[0].Content)
	require.Equal(t, "style: bold", tokens[0].DirectiveText())
	require.Equal(t, Token{Kind: KindDirective, Content: "style: bold", Markup: DirectiveMarkup}, tokens[1])
	require.Equal(t, text(" after"), tokens[2])
}

func TestInline_EmptyDirectiveIsNotConsumed(t *testing.T) {
	tokens := scanInline("$x$()")
	require.Equal(t, []Token{inline("x"), text("()")}, tokens)
}

func TestInline_UnbalancedDirectiveIsLeftAsText(t *testing.T) {
	tokens := scanInline("$x$(a (b")
	require.Equal(t, []Token{inline("x"), text("(a (b")}, tokens)
}

func TestInline_NoDollarIsIdentity(t *testing.T) {
	src := "plain (text) with \\ backslashes and 100% no math"
	require.Equal(t, []Token{text(src)}, scanInline(src))
}
