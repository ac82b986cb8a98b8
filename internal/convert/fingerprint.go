package convert

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/mathspan/internal/frontmatter"
	"git.home.luguber.info/inful/mathspan/internal/version"
)

// FingerprintMeta is the name of the meta tag carrying a page's source fingerprint.
const FingerprintMeta = "mathspan:fingerprint"

// settingsKey holds the render settings folded into the fingerprint so that a
// configuration change invalidates every page.
const settingsKey = "_mathspan"

// Fingerprint hashes the page front matter, body and the settings that shape
// its output.
//
// Front matter is serialized with sorted keys and LF newlines and a single
// trailing newline is trimmed before hashing.
func Fingerprint(fields map[string]any, body []byte, s Settings) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	forHash := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		forHash[k] = v
	}
	settings := map[string]any{
		"global_style":   s.GlobalStyle,
		"throw_on_error": s.ThrowOnError,
		"gfm":            s.GFM,
		"version":        version.Version,
	}
	if len(s.Passthrough) > 0 {
		settings["options"] = s.Passthrough
	}
	forHash[settingsKey] = settings

	serialized, err := frontmatter.SerializeYAML(forHash)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), string(body)), nil
}

// ReadFingerprint returns the fingerprint stored in a generated page, or ""
// when the page does not exist or carries none.
func ReadFingerprint(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	return readFingerprint(f)
}

func readFingerprint(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta && attr(n, "name") == FingerprintMeta {
			found = attr(n, "content")
			return true
		}
		// Only the head can carry it.
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return found, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
