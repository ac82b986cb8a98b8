// Package expr is the built-in expression renderer used by the CLI. It checks
// that an expression is well formed and emits it as a styled HTML element for
// client-side typesetting.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/mathspan/internal/directive"
	"git.home.luguber.info/inful/mathspan/internal/render"
)

var (
	ErrUnbalanced     = errors.New("unbalanced brackets")
	ErrDanglingEscape = errors.New("dangling backslash")
	ErrUnsupportedTag = errors.New("unsupported element")
)

const (
	classBase    = "math"
	classInline  = "math-inline"
	classDisplay = "math-display"
)

// Passthrough option keys understood by Renderer.
const (
	OptionClass = "class"
	OptionTag   = "tag"
)

var allowedTags = map[atom.Atom]bool{
	atom.Span: true,
	atom.Div:  true,
	atom.Code: true,
}

// Renderer implements render.Service.
type Renderer struct{}

// New returns a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// RenderToString validates content and renders it as an element whose style
// attribute comes from the directive entries in style.
func (r *Renderer) RenderToString(content, style string, p render.Params) (string, error) {
	if err := checkBalance(content); err != nil {
		return "", err
	}

	tag := atom.Span
	if v, ok := p.Option(OptionTag); ok {
		name, _ := v.(string)
		a := atom.Lookup([]byte(strings.ToLower(name)))
		if !allowedTags[a] {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedTag, name)
		}
		tag = a
	}

	classes := []string{classBase, classInline}
	if p.DisplayMode {
		classes[1] = classDisplay
	}
	if v, ok := p.Option(OptionClass); ok {
		if extra, ok := v.(string); ok {
			classes = append(classes, strings.Fields(extra)...)
		}
	}

	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag.String(),
		DataAtom: tag,
		Attr:     []html.Attribute{{Key: "class", Val: strings.Join(classes, " ")}},
	}
	if css := directive.ParseEntries(style).CSS(); css != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "style", Val: css})
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: norm.NFC.String(content)})

	var b strings.Builder
	if err := html.Render(&b, node); err != nil {
		return "", fmt.Errorf("render element: %w", err)
	}
	return b.String(), nil
}

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

// checkBalance reports unbalanced brackets and a trailing lone backslash.
// A backslash escapes the character after it.
func checkBalance(s string) error {
	var stack []rune
	escaped := false
	for i, c := range s {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != closers[c] {
				return fmt.Errorf("%w: unexpected %q at offset %d", ErrUnbalanced, c, i)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if escaped {
		return ErrDanglingEscape
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: %d unclosed", ErrUnbalanced, len(stack))
	}
	return nil
}
