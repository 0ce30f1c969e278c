// Package textproc turns raw question text into the token stream the
// vectorizer was fitted on.
package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanOptions are the preprocessing flags carried by the bundle config.
type CleanOptions struct {
	// StripHTML drops markup and keeps text nodes. Question bodies are stored
	// as HTML.
	StripHTML bool `json:"strip_html"`

	// StripCode also drops the content of <code> and <pre> elements. Only
	// meaningful together with StripHTML.
	StripCode bool `json:"strip_code"`

	// MaxChars truncates the cleaned text to this many runes. Zero disables it.
	MaxChars int `json:"max_chars"`
}

// Clean applies the preprocessing flags. It never fails: malformed markup is
// handled leniently by the tokenizer.
func Clean(text string, opts CleanOptions) string {
	if opts.StripHTML {
		text = stripHTML(text, opts.StripCode)
	}
	if opts.MaxChars > 0 && utf8.RuneCountInString(text) > opts.MaxChars {
		text = string([]rune(text)[:opts.MaxChars])
	}
	return text
}

func stripHTML(text string, dropCode bool) string {
	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer error: keep what was read so far.
			return strings.Join(strings.Fields(b.String()), " ")

		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}

		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if isSkipped(a, dropCode) {
				switch tt {
				case html.StartTagToken:
					skip++
				case html.EndTagToken:
					if skip > 0 {
						skip--
					}
				}
			}
			// Tags separate words: "<p>foo</p><p>bar</p>" must not become "foobar".
			b.WriteByte(' ')
		}
	}
}

func isSkipped(a atom.Atom, dropCode bool) bool {
	switch a {
	case atom.Script, atom.Style:
		return true
	case atom.Code, atom.Pre:
		return dropCode
	}
	return false
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents removes combining marks, e.g. "café" -> "cafe".
func FoldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}
