package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/frontmatter"
	"git.home.luguber.info/inful/mathspan/internal/mathscan"
)

// TokensCmd implements the 'tokens' command.
type TokensCmd struct {
	Source   string `arg:"" name:"source" help:"Markdown file, or - for stdin"`
	Format   string `short:"f" help:"Output format" enum:"text,json" default:"text"`
	MathOnly bool   `name:"math-only" help:"Omit text tokens"`
}

type tokenJSON struct {
	Kind      mathscan.Kind `json:"kind"`
	Content   string        `json:"content"`
	Markup    string        `json:"markup,omitempty"`
	Block     bool          `json:"block,omitempty"`
	Map       *[2]int       `json:"map,omitempty"`
	Directive string        `json:"directive,omitempty"`
}

func (c *TokensCmd) Run(g *Global, _ *CLI) error {
	content, err := c.read(g.In)
	if err != nil {
		return err
	}
	doc, err := frontmatter.Split(content)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryParse, "invalid front matter").
			WithContext("path", c.Source).
			Build()
	}

	tokens := mathscan.New().Tokenize(string(doc.Body))
	if c.MathOnly {
		kept := tokens[:0]
		for _, tok := range tokens {
			if tok.Kind != mathscan.KindText {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	if c.Format == "json" {
		return writeTokensJSON(g.Out, tokens)
	}
	return writeTokensText(g.Out, tokens)
}

func (c *TokensCmd) read(stdin io.Reader) ([]byte, error) {
	if c.Source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read stdin").Build()
		}
		return data, nil
	}
	data, err := os.ReadFile(c.Source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFoundError("source not found").WithContext("path", c.Source).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source").
			WithContext("path", c.Source).
			Build()
	}
	return data, nil
}

func writeTokensText(w io.Writer, tokens []mathscan.Token) error {
	for _, tok := range tokens {
		line := fmt.Sprintf("%-14s %q", tok.Kind, tok.Content)
		if tok.Block {
			line += fmt.Sprintf(" lines=%d-%d", tok.Map[0], tok.Map[1])
		}
		if d := tok.DirectiveText(); d != "" {
			line += fmt.Sprintf(" directive=%q", d)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeTokensJSON(w io.Writer, tokens []mathscan.Token) error {
	out := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		tj := tokenJSON{
			Kind:      tok.Kind,
			Content:   tok.Content,
			Markup:    tok.Markup,
			Block:     tok.Block,
			Directive: tok.DirectiveText(),
		}
		if tok.Block {
			m := tok.Map
			tj.Map = &m
		}
		out = append(out, tj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
