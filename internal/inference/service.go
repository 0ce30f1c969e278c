// Package inference turns text into ranked tag predictions using the loaded
// model state.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/alexandrapadonou/tagStackoverflow/internal/model"
	"github.com/alexandrapadonou/tagStackoverflow/internal/textproc"
)

// ErrModelUnavailable is returned while no model is loaded.
var ErrModelUnavailable = errors.New("model unavailable")

// InvalidInputError rejects a single request.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateProvider hands out the current model state, nil when none is loaded.
type StateProvider interface {
	Current() *model.State
}

// Defaults are operator-level policy overrides. Zero TopK and nil Threshold
// defer to the bundle config. Zero MaxTopK allows request top_k up to the
// label count of the loaded model, and never less than DefaultMaxTopK.
type Defaults struct {
	TopK      int
	Threshold *float64
	MaxTopK   int
}

const DefaultMaxTopK = 50

// Options are per-request overrides.
type Options struct {
	TopK      *int
	Threshold *float64
}

// Source tells which layer decided a policy value.
type Source string

const (
	SourceRequest  Source = "request"
	SourceOperator Source = "operator"
	SourceBundle   Source = "bundle"
)

type Policy struct {
	TopK            int     `json:"top_k"`
	TopKSource      Source  `json:"top_k_source"`
	Threshold       float64 `json:"threshold"`
	ThresholdSource Source  `json:"threshold_source"`
}

type Tag struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Result struct {
	Tags   []Tag  `json:"tags"`
	Policy Policy `json:"policy"`
}

type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Service is safe for concurrent use; it never mutates the model state.
type Service struct {
	states   StateProvider
	defaults Defaults
}

func NewService(states StateProvider, defaults Defaults) *Service {
	if defaults.MaxTopK < 0 {
		defaults.MaxTopK = 0
	}
	return &Service{states: states, defaults: defaults}
}

// MaxTopK is the largest top_k a request may ask for with the current model.
func (s *Service) MaxTopK() int {
	return s.maxTopK(s.states.Current())
}

func (s *Service) maxTopK(state *model.State) int {
	if s.defaults.MaxTopK > 0 {
		return s.defaults.MaxTopK
	}
	if state == nil {
		return DefaultMaxTopK
	}
	return max(state.Labels().Len(), DefaultMaxTopK)
}

// Predict scores text and returns the tags that pass the threshold, best
// first, at most top_k of them. An empty tag list is a valid answer.
func (s *Service) Predict(ctx context.Context, text string, opts Options) (*Result, error) {
	if !utf8.ValidString(text) {
		return nil, &InvalidInputError{Field: "text", Reason: "not valid UTF-8"}
	}

	state := s.states.Current()
	if state == nil {
		return nil, ErrModelUnavailable
	}

	policy, err := s.resolvePolicy(state.Config(), s.maxTopK(state), opts)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := textproc.Clean(text, state.Config().Preprocess)
	scores := state.Scores(state.Vectorize(cleaned))

	return &Result{
		Tags:   selectTags(scores, state.Labels(), policy),
		Policy: policy,
	}, nil
}

func (s *Service) resolvePolicy(cfg model.BundleConfig, maxTopK int, opts Options) (Policy, error) {
	p := Policy{
		TopK:            cfg.TopK,
		TopKSource:      SourceBundle,
		Threshold:       cfg.Threshold,
		ThresholdSource: SourceBundle,
	}

	switch {
	case opts.TopK != nil:
		k := *opts.TopK
		if k < 1 || k > maxTopK {
			return Policy{}, &InvalidInputError{
				Field:  "top_k",
				Reason: fmt.Sprintf("must be between 1 and %d, got %d", maxTopK, k),
			}
		}
		p.TopK, p.TopKSource = k, SourceRequest
	case s.defaults.TopK > 0:
		p.TopK, p.TopKSource = s.defaults.TopK, SourceOperator
	}

	switch {
	case opts.Threshold != nil:
		th := *opts.Threshold
		if math.IsNaN(th) || math.IsInf(th, 0) {
			return Policy{}, &InvalidInputError{Field: "threshold", Reason: "must be a finite number"}
		}
		p.Threshold, p.ThresholdSource = th, SourceRequest
	case s.defaults.Threshold != nil:
		p.Threshold, p.ThresholdSource = *s.defaults.Threshold, SourceOperator
	}

	return p, nil
}

func selectTags(scores []float64, labels *model.Binarizer, p Policy) []Tag {
	tags := make([]Tag, 0, min(p.TopK, len(scores)))
	for i, score := range scores {
		if score >= p.Threshold {
			tags = append(tags, Tag{Label: labels.Label(i), Score: score})
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Score != tags[j].Score {
			return tags[i].Score > tags[j].Score
		}
		return tags[i].Label < tags[j].Label
	})

	if len(tags) > p.TopK {
		tags = tags[:p.TopK]
	}
	return tags
}

// Health reports whether predictions can be served.
func (s *Service) Health() Health {
	if s.states.Current() == nil {
		return Health{Status: StatusDegraded}
	}
	return Health{Status: StatusOK, ModelLoaded: true}
}

// Model returns metadata and config of the loaded model, ok false while none
// is loaded.
func (s *Service) Model() (meta model.Metadata, cfg model.BundleConfig, ok bool) {
	state := s.states.Current()
	if state == nil {
		return model.Metadata{}, model.BundleConfig{}, false
	}
	return state.Metadata(), state.Config(), true
}

// Labels returns the label vocabulary, nil while no model is loaded.
func (s *Service) Labels() []string {
	state := s.states.Current()
	if state == nil {
		return nil
	}
	return state.Labels().Classes()
}
