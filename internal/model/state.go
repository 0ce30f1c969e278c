package model

import (
	"time"
)

// Metadata describes a loaded bundle.
type Metadata struct {
	Dir           string        `json:"dir"`
	Resolved      string        `json:"resolved,omitempty"`
	BundleBytes   int64         `json:"bundle_bytes"`
	LoadedAt      time.Time     `json:"loaded_at"`
	LoadDuration  time.Duration `json:"load_duration"`
	EstimatorType EstimatorType `json:"estimator_type"`
	ScoreKind     ScoreKind     `json:"score_kind"`
	Labels        int           `json:"labels"`
	Features      int           `json:"features"`
	Version       string        `json:"version,omitempty"`
}

// State is an immutable loaded model. It is safe for concurrent use.
type State struct {
	vectorizer *Vectorizer
	scorer     Scorer
	labels     *Binarizer
	config     BundleConfig
	meta       Metadata
}

// NewState checks that the parts agree on their widths and assembles them.
func NewState(vectorizer *Vectorizer, scorer Scorer, labels *Binarizer, cfg BundleConfig, meta Metadata) (*State, error) {
	if scorer.Outputs() != labels.Len() {
		return nil, &IncompatibleArtifactsError{
			Dimension: "estimator outputs vs binarizer labels",
			Want:      labels.Len(),
			Got:       scorer.Outputs(),
		}
	}
	if vectorizer != nil && scorer.Inputs() != vectorizer.Features() {
		return nil, &IncompatibleArtifactsError{
			Dimension: "estimator inputs vs vectorizer features",
			Want:      vectorizer.Features(),
			Got:       scorer.Inputs(),
		}
	}

	meta.ScoreKind = scorer.Kind()
	meta.Labels = labels.Len()
	meta.Features = scorer.Inputs()
	if meta.Version == "" {
		meta.Version = cfg.Version
	}

	return &State{
		vectorizer: vectorizer,
		scorer:     scorer,
		labels:     labels,
		config:     cfg,
		meta:       meta,
	}, nil
}

// Vectorize turns cleaned text into features. A state without a vectorizer
// yields empty vectors.
func (s *State) Vectorize(text string) SparseVector {
	if s.vectorizer == nil {
		return SparseVector{}
	}
	return s.vectorizer.Transform(text)
}

// Scores returns one harmonized score per label for x.
func (s *State) Scores(x SparseVector) []float64 {
	return s.scorer.Scores(x)
}

func (s *State) Labels() *Binarizer {
	return s.labels
}

func (s *State) Config() BundleConfig {
	return s.config
}

func (s *State) Metadata() Metadata {
	return s.meta
}
