package textproc

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// wordChars is the Unicode word class, without brackets.
const wordChars = `\p{L}\p{N}_`

var (
	wordRun  = regexp.MustCompile(`^\\b((?:\\w(?:\{\d+,?\}|\+|\*)?)+)\\b$`)
	wordAtom = regexp.MustCompile(`\\w(?:\{(\d+)(,?)\}|(\+)|(\*))?`)
)

// wordRunPattern rewrites `\b` + word atoms + `\b` with an open-ended last
// quantifier, such as `\b\w\w+\b` or `\b\w{3,}\b`, into a Unicode run of at
// least n word characters. Greedy matching of such a run always starts and
// ends on a word boundary, so the boundaries can be dropped.
func wordRunPattern(p string) (string, bool) {
	m := wordRun.FindStringSubmatch(p)
	if m == nil {
		return "", false
	}

	n, open := 0, false
	for _, a := range wordAtom.FindAllStringSubmatch(m[1], -1) {
		switch {
		case a[1] != "":
			k, err := strconv.Atoi(a[1])
			if err != nil {
				return "", false
			}
			n += k
			open = a[2] == ","
		case a[3] != "":
			n++
			open = true
		case a[4] != "":
			open = true
		default:
			n++
			open = false
		}
	}
	if !open || n == 0 {
		return "", false
	}
	return fmt.Sprintf("[%s]{%d,}", wordChars, n), true
}

// translatePattern gives \w, \W, \d and \D their Unicode meaning. RE2 only
// knows ASCII word boundaries, so \b and \B outside a class are rejected
// unless wordRunPattern already handled them.
func translatePattern(p string) (string, error) {
	var b strings.Builder
	inClass := false

	for i := 0; i < len(p); i++ {
		c := p[i]

		if c == '\\' && i+1 < len(p) {
			i++
			switch e := p[i]; e {
			case 'w':
				if inClass {
					b.WriteString(wordChars)
				} else {
					b.WriteString("[" + wordChars + "]")
				}
			case 'W':
				if inClass {
					return "", errors.New(`\W inside a character class is not supported`)
				}
				b.WriteString("[^" + wordChars + "]")
			case 'd':
				b.WriteString(`\p{Nd}`)
			case 'D':
				b.WriteString(`\P{Nd}`)
			case 'b':
				if !inClass {
					return "", errors.New(`\b is only supported around a plain word run such as \b\w\w+\b`)
				}
				b.WriteString(`\x08`)
			case 'B':
				return "", errors.New(`\B is not supported`)
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
			continue
		}

		switch {
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			if i+1 < len(p) && p[i+1] == '^' {
				b.WriteByte('^')
				i++
			}
			if i+1 < len(p) && p[i+1] == ']' {
				b.WriteString(`\]`)
				i++
			}
			continue
		case c == '[' && inClass && i+1 < len(p) && p[i+1] == ':':
			// [:alpha:] and friends
			end := strings.Index(p[i:], ":]")
			if end < 0 {
				return "", errors.New("unterminated character class name")
			}
			b.WriteString(p[i : i+end+2])
			i += end + 1
			continue
		case c == ']' && inClass:
			inClass = false
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}
