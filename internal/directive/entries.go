package directive

import (
	"strconv"
	"strings"
)

// Entry is one "key: value" pair of a directive body. Bare words become an
// Entry with an empty Value.
type Entry struct {
	Key   string
	Value string
}

// AST is the parsed form of a directive body.
type AST struct {
	Entries []Entry
}

// Lookup returns the value of the last entry with the given key.
func (a AST) Lookup(key string) (string, bool) {
	for i := len(a.Entries) - 1; i >= 0; i-- {
		if a.Entries[i].Key == key {
			return a.Entries[i].Value, true
		}
	}
	return "", false
}

// flagDeclarations maps shorthand flags to CSS declarations.
var flagDeclarations = map[string]string{
	"bold":      "font-weight: bold",
	"italic":    "font-style: italic",
	"underline": "text-decoration: underline",
	"normal":    "font-weight: normal; font-style: normal",
	"large":     "font-size: larger",
	"small":     "font-size: smaller",
}

// CSS renders the entries as an inline CSS declaration list. Bare flags and
// "style: <flag>" entries go through the shorthand table; other keys must be
// plain CSS property names. Anything else is dropped.
func (a AST) CSS() string {
	decls := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		switch {
		case e.Value == "":
			if d, ok := flagDeclarations[strings.ToLower(e.Key)]; ok {
				decls = append(decls, d)
			}
		case e.Key == "style":
			for _, flag := range strings.Fields(e.Value) {
				if d, ok := flagDeclarations[strings.ToLower(flag)]; ok {
					decls = append(decls, d)
				}
			}
		case isPropertyName(e.Key) && safeValue(e.Value):
			decls = append(decls, e.Key+": "+e.Value)
		}
	}
	return strings.Join(decls, "; ")
}

// ParseEntries splits a directive body into entries separated by ';', ',' or
// line breaks outside brackets and double-quoted strings.
func ParseEntries(body string) AST {
	var ast AST
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, ":")
		if !found {
			ast.Entries = append(ast.Entries, Entry{Key: part})
			continue
		}
		ast.Entries = append(ast.Entries, Entry{
			Key:   strings.TrimSpace(key),
			Value: unquote(strings.TrimSpace(value)),
		})
	}
	return ast
}

func splitTopLevel(body string) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		if inString {
			switch c {
			case '\\':
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
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ';', ',', '\n':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		if s, err := strconv.Unquote(v); err == nil {
			return s
		}
	}
	return v
}

func isPropertyName(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && c != '-' {
			return false
		}
	}
	return true
}

func safeValue(v string) bool {
	return !strings.ContainsAny(v, ";<>{}\"")
}
