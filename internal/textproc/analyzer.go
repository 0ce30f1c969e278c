package textproc

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTokenPattern matches runs of two or more letters, digits or
// underscores, the Unicode reading of the usual `\b\w\w+\b`.
const DefaultTokenPattern = "[" + wordChars + "]{2,}"

// AnalyzerOptions mirrors the tokenisation settings stored with a fitted
// vectorizer.
type AnalyzerOptions struct {
	Lowercase    bool
	StripAccents bool
	TokenPattern string
	NgramMin     int
	NgramMax     int
	StopWords    []string
}

// Analyzer splits text into word n-grams.
type Analyzer struct {
	lowercase    bool
	stripAccents bool
	pattern      *regexp.Regexp
	ngramMin     int
	ngramMax     int
	stopWords    map[string]struct{}
}

func NewAnalyzer(opts AnalyzerOptions) (*Analyzer, error) {
	pattern, err := compileTokenPattern(opts.TokenPattern)
	if err != nil {
		return nil, err
	}

	lo, hi := opts.NgramMin, opts.NgramMax
	if lo == 0 && hi == 0 {
		lo, hi = 1, 1
	}
	if lo < 1 || hi < lo {
		return nil, fmt.Errorf("invalid ngram range [%d, %d]", opts.NgramMin, opts.NgramMax)
	}

	var stop map[string]struct{}
	if len(opts.StopWords) > 0 {
		stop = make(map[string]struct{}, len(opts.StopWords))
		for _, w := range opts.StopWords {
			stop[w] = struct{}{}
		}
	}

	return &Analyzer{
		lowercase:    opts.Lowercase,
		stripAccents: opts.StripAccents,
		pattern:      pattern,
		ngramMin:     lo,
		ngramMax:     hi,
		stopWords:    stop,
	}, nil
}

// compileTokenPattern accepts patterns exported from Python, which may carry
// the (?u) flag RE2 does not know. Word, digit and boundary escapes keep
// their Unicode meaning; see translatePattern.
func compileTokenPattern(p string) (*regexp.Regexp, error) {
	p = strings.TrimPrefix(p, "(?u)")

	var expr string
	switch run, ok := wordRunPattern(p); {
	case p == "":
		expr = DefaultTokenPattern
	case ok:
		expr = run
	default:
		var err error
		if expr, err = translatePattern(p); err != nil {
			return nil, fmt.Errorf("invalid token pattern %q: %w", p, err)
		}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid token pattern %q: %w", p, err)
	}
	return re, nil
}

// Analyze returns the n-gram terms of text in document order. Empty or
// whitespace-only text yields no terms.
func (a *Analyzer) Analyze(text string) []string {
	if a.stripAccents {
		text = FoldAccents(text)
	}
	if a.lowercase {
		text = strings.ToLower(text)
	}

	tokens := a.pattern.FindAllString(text, -1)
	if a.stopWords != nil {
		kept := tokens[:0]
		for _, t := range tokens {
			if _, ok := a.stopWords[t]; !ok {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}

	if a.ngramMin == 1 && a.ngramMax == 1 {
		return tokens
	}

	var terms []string
	for n := a.ngramMin; n <= a.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
