package mathscan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize_PlainTextIsIdentity(t *testing.T) {
	for _, src := range []string{
		"",
		"one line",
		"# Title\n\nSome *text* with (parens) and \\ escapes.\n\n- list\n",
	} {
		tokens := New().Tokenize(src)
		var b strings.Builder
		for _, tok := range tokens {
			require.Equal(t, KindText, tok.Kind)
			b.WriteString(tok.Content)
		}
		require.Equal(t, src, b.String())
	}
}

func TestTokenize_MixedDocument(t *testing.T) {
	src := "Inline $x$(bold) here.\n$$\na + b\n$$\nCost: $5.\n"
	tokens := New().Tokenize(src)

	require.Equal(t, []Token{
		text("Inline "),
		{Kind: KindInline, Content: "x", Markup: InlineMarkup, Directive: &Directive{Content: "bold"}},
		{Kind: KindDirective, Content: "bold", Markup: DirectiveMarkup},
		text(" here.\n"),
		{Kind: KindBlock, Content: "a + b\n", Markup: BlockMarkup, Block: true, Map: [2]int{1, 4}},
		text("Cost: $5.\n"),
	}, tokens)
}

func TestTokenize_UnterminatedBlockFallsBackToText(t *testing.T) {
	src := "$$\nx\n"
	require.Equal(t, []Token{text(src)}, New().Tokenize(src))
}

func TestTokenize_DirectiveLineDeltaSkipsLines(t *testing.T) {
	src := "$$\nx\n$$(a;\nb)\ntail\n"
	tokens := New().Tokenize(src)
	require.Len(t, tokens, 3)
	require.Equal(t, "a;\nb", tokens[1].Content)
	require.Equal(t, text("tail\n"), tokens[2])
}

func TestTokenize_InlineDirectiveContinuesOnNextLine(t *testing.T) {
	tokens := New().Tokenize("$x$(color: red;\nbold) after\n")
	require.Equal(t, []Token{
		{Kind: KindInline, Content: "x", Markup: InlineMarkup, Directive: &Directive{Content: "color: red;\nbold"}},
		{Kind: KindDirective, Content: "color: red;\nbold", Markup: DirectiveMarkup},
		text(" after\n"),
	}, tokens)
}

func TestTokenize_OpenDirectiveStopsAtParagraphEnd(t *testing.T) {
	tokens := New().Tokenize("$x$(a\n\nb)\n")
	require.Len(t, tokens, 3)
	require.Equal(t, "a", tokens[0].DirectiveText())
	require.Equal(t, text("\n\nb)\n"), tokens[2])
}

func TestTokenize_OpenDirectiveInsideParagraphIsText(t *testing.T) {
	src := "$x$(a\nb\n"
	require.Equal(t, []Token{inline("x"), text("(a\nb\n")}, New().Tokenize(src))
}
