package directive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_UnmatchedCloseMarksDirectiveEnd(t *testing.T) {
	res := NewParser().Parse("style: bold) trailing text")
	require.Equal(t, UnmatchedClose, res.Outcome)
	require.Equal(t, 11, res.Offset)
	require.Equal(t, 0, res.LineDelta)
}

func TestParse_NestedBracketsAreBalanced(t *testing.T) {
	res := NewParser().Parse("color: rgb(1, 2, 3); pad: [1 {2}]) rest")
	require.Equal(t, UnmatchedClose, res.Outcome)
	require.Equal(t, len("color: rgb(1, 2, 3); pad: [1 {2}]"), res.Offset)
}

func TestParse_LineDeltaCountsBreaksBeforeClose(t *testing.T) {
	res := NewParser().Parse("color: red\nweight: bold\n)\nmore")
	require.Equal(t, UnmatchedClose, res.Outcome)
	require.Equal(t, 2, res.LineDelta)
}

func TestParse_BalancedToEndIsOk(t *testing.T) {
	res := NewParser().Parse("style: bold")
	require.Equal(t, Ok, res.Outcome)
	require.Equal(t, 11, res.Offset)
	v, ok := res.AST.Lookup("style")
	require.True(t, ok)
	require.Equal(t, "bold", v)
}

func TestParse_UnexpectedTokens(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		found string
	}{
		{"wrong closer at top level", "a] b", "]"},
		{"mismatched closer", "(a] b", "]"},
		{"unclosed bracket at end", "a (b", ""},
		{"unterminated string", `a "b) c`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := NewParser().Parse(tc.text)
			require.Equal(t, UnexpectedToken, res.Outcome)
			require.Equal(t, tc.found, res.Found)
		})
	}
}

func TestParse_QuotedParenIsIgnored(t *testing.T) {
	res := NewParser().Parse(`label: "a)b") tail`)
	require.Equal(t, UnmatchedClose, res.Outcome)
	require.Equal(t, len(`label: "a)b"`), res.Offset)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "ok", Ok.String())
	require.Equal(t, "unexpected_token", UnexpectedToken.String())
	require.Equal(t, "unmatched_close", UnmatchedClose.String())
	require.Equal(t, "outcome(9)", Outcome(9).String())
}
