package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/alexandrapadonou/tagStackoverflow/internal/textproc"
)

// VectorizerSpec is the on-disk form of a fitted TF-IDF vectorizer.
type VectorizerSpec struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	StripAccents string         `json:"strip_accents,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
	NgramRange   [2]int         `json:"ngram_range,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty"`
	Binary       bool           `json:"binary,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty"`
	UseIDF       *bool          `json:"use_idf,omitempty"`
	Norm         string         `json:"norm,omitempty"`
}

// Vectorizer turns text into TF-IDF weighted sparse vectors.
type Vectorizer struct {
	analyzer    *textproc.Analyzer
	vocabulary  map[string]int
	idf         []float64
	binary      bool
	sublinearTF bool
	useIDF      bool
	norm        string
}

func NewVectorizer(spec VectorizerSpec) (*Vectorizer, error) {
	if len(spec.Vocabulary) == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}

	n := len(spec.Vocabulary)
	seen := make([]bool, n)
	for term, idx := range spec.Vocabulary {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("term %q has index %d outside [0,%d)", term, idx, n)
		}
		if seen[idx] {
			return nil, fmt.Errorf("index %d assigned twice", idx)
		}
		seen[idx] = true
	}

	useIDF := spec.UseIDF == nil || *spec.UseIDF
	if useIDF && len(spec.IDF) != n {
		return nil, fmt.Errorf("idf has %d weights for %d terms", len(spec.IDF), n)
	}

	norm := spec.Norm
	switch norm {
	case "", "l2":
		norm = "l2"
	case "l1", "none":
	default:
		return nil, fmt.Errorf("unsupported norm %q", spec.Norm)
	}

	var stripAccents bool
	switch spec.StripAccents {
	case "", "none":
	case "unicode", "ascii":
		stripAccents = true
	default:
		return nil, fmt.Errorf("unsupported strip_accents %q", spec.StripAccents)
	}

	analyzer, err := textproc.NewAnalyzer(textproc.AnalyzerOptions{
		Lowercase:    spec.Lowercase == nil || *spec.Lowercase,
		StripAccents: stripAccents,
		TokenPattern: spec.TokenPattern,
		NgramMin:     spec.NgramRange[0],
		NgramMax:     spec.NgramRange[1],
		StopWords:    spec.StopWords,
	})
	if err != nil {
		return nil, err
	}

	return &Vectorizer{
		analyzer:    analyzer,
		vocabulary:  spec.Vocabulary,
		idf:         spec.IDF,
		binary:      spec.Binary,
		sublinearTF: spec.SublinearTF,
		useIDF:      useIDF,
		norm:        norm,
	}, nil
}

// Features reports the vocabulary size.
func (v *Vectorizer) Features() int {
	return len(v.vocabulary)
}

// Transform vectorizes text. Text without known terms yields an empty
// vector.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range v.analyzer.Analyze(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	out := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		out.Indices = append(out.Indices, idx)
	}
	sort.Ints(out.Indices)

	var l1, l2 float64
	for _, idx := range out.Indices {
		tf := counts[idx]
		switch {
		case v.binary:
			tf = 1
		case v.sublinearTF:
			tf = 1 + math.Log(tf)
		}
		if v.useIDF {
			tf *= v.idf[idx]
		}
		out.Values = append(out.Values, tf)
		l1 += math.Abs(tf)
		l2 += tf * tf
	}

	var scale float64
	switch v.norm {
	case "l2":
		scale = math.Sqrt(l2)
	case "l1":
		scale = l1
	}
	if scale > 0 {
		for i := range out.Values {
			out.Values[i] /= scale
		}
	}

	return out
}
