package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mathspan/internal/mathext"
	"git.home.luguber.info/inful/mathspan/internal/mathscan"
	"git.home.luguber.info/inful/mathspan/internal/render"
)

const doc = "# Title\n\nEnergy $E=mc^2$(bold) and $x$.\n\n$$\na + b\n$$\n\n```\n$not math$\n```\n"

func TestExtractMath(t *testing.T) {
	spans, err := ExtractMath([]byte(doc), Options{})
	require.NoError(t, err)

	require.Equal(t, []Span{
		{Kind: mathscan.KindInline, Content: "E=mc^2", Directive: "bold"},
		{Kind: mathscan.KindInline, Content: "x"},
		{Kind: mathscan.KindBlock, Content: "a + b\n", Lines: &[2]int{4, 7}},
	}, spans)
}

func TestExtractMath_Disabled(t *testing.T) {
	spans, err := ExtractMath([]byte(doc), Options{DisableMath: true})
	require.NoError(t, err)
	require.Empty(t, spans)
}

func TestRender(t *testing.T) {
	svc := render.ServiceFunc(func(content, _ string, p render.Params) (string, error) {
		if p.DisplayMode {
			return "[" + content + "]", nil
		}
		return "(" + content + ")", nil
	})
	res, err := New(Options{Math: []mathext.Option{mathext.WithService(svc)}}).Render([]byte(doc))
	require.NoError(t, err)

	html := string(res.HTML)
	require.Contains(t, html, "<p>Energy (E=mc^2) and (x).</p>")
	require.Contains(t, html, "<p align=\"center\">[a + b\n]</p>")
	require.Contains(t, html, "<pre><code>$not math$\n</code></pre>")
	require.Len(t, res.Spans, 3)

	total, directives := CountKinds(res.Spans)
	require.Equal(t, 2, total[mathscan.KindInline])
	require.Equal(t, 1, total[mathscan.KindBlock])
	require.Equal(t, 1, directives[mathscan.KindInline])
	require.Zero(t, directives[mathscan.KindBlock])
}

func TestRender_GFM(t *testing.T) {
	res, err := New(Options{GFM: true}).Render([]byte("| a |\n|---|\n| $x$ |\n"))
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<table>")
	require.Contains(t, string(res.HTML), `<span class="math math-inline">x</span>`)
}
