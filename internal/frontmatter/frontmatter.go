// Package frontmatter separates YAML front matter from Markdown documents and
// decodes the page settings mathspan reads from it.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a Markdown file split at its front matter.
type Document struct {
	// Raw is the YAML between the delimiters. Nil when the file has none.
	Raw  []byte
	Body []byte
	Had  bool
	// Newline is "\r\n" for CRLF files and "\n" otherwise.
	Newline string
}

// Split separates `---` delimited YAML front matter from the Markdown body.
// A file that does not start with a delimiter line is all body.
func Split(content []byte) (Document, error) {
	nl := detectNewline(content)
	doc := Document{Body: content, Newline: nl}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return doc, nil
	}
	rest := content[len(open):]

	if bytes.HasPrefix(rest, open) {
		return Document{Raw: []byte{}, Body: rest[len(open):], Had: true, Newline: nl}, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return Document{Newline: nl}, ErrMissingClosingDelimiter
	}
	return Document{
		Raw:     rest[:idx+len(nl)],
		Body:    rest[idx+len(closeSeq):],
		Had:     true,
		Newline: nl,
	}, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Meta holds the front matter keys that change how a page is converted.
type Meta struct {
	Title string `yaml:"title"`
	// MathStyle is appended to the configured global style for every span on
	// the page.
	MathStyle string `yaml:"math_style"`
	// Math set to false disables math span recognition for the page.
	Math *bool `yaml:"math"`
}

// MathEnabled reports whether math spans should be recognized.
func (m Meta) MathEnabled() bool {
	return m.Math == nil || *m.Math
}

// Meta decodes the page settings and returns all fields for fingerprinting.
func (d Document) Meta() (Meta, map[string]any, error) {
	fields, err := ParseYAML(d.Raw)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	var meta Meta
	if len(d.Raw) > 0 {
		if err := yaml.Unmarshal(d.Raw, &meta); err != nil {
			return Meta{}, nil, fmt.Errorf("decode front matter: %w", err)
		}
	}
	return meta, fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
