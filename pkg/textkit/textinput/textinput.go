// Package textinput prepares host-supplied text for analysis. It repairs
// invalid UTF-8, optionally applies NFC normalization and can pull the
// readable text out of an HTML fragment.
package textinput

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sanitize replaces every invalid UTF-8 byte with U+FFFD. Valid input is
// returned unchanged.
func Sanitize(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, _, err := transform.String(unicode.UTF8.NewDecoder(), s)
	if err != nil {
		return strings.ToValidUTF8(s, "\uFFFD")
	}
	return out
}

// Normalize sanitizes s and converts it to NFC, so that a precomposed and a
// decomposed accent produce the same tokens and byte offsets.
func Normalize(s string) string {
	return norm.NFC.String(Sanitize(s))
}

// FromHTML returns the text nodes of an HTML document joined by single
// spaces. Script, style and template contents are skipped.
func FromHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var parts []string
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Template, atom.Noscript:
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(parts, " "), nil
}

// FromHTMLString is FromHTML over a string. Unparseable input is returned
// as-is.
func FromHTMLString(s string) string {
	text, err := FromHTML(strings.NewReader(s))
	if err != nil {
		return s
	}
	return text
}
