package model

import "fmt"

// ScoreKind tells how a scorer derives its scores.
type ScoreKind string

const (
	ScoreProbability ScoreKind = "probability"
	// ScoreMargin scores are sigmoid-squashed decision margins.
	ScoreMargin ScoreKind = "margin"
)

// Scorer produces one harmonized score in [0,1] per label.
type Scorer interface {
	Scores(x SparseVector) []float64
	Kind() ScoreKind
	Outputs() int
	Inputs() int
}

// NewScorer probes est once and picks the scoring path: probabilities when
// available, otherwise the logistic sigmoid of the decision margin.
func NewScorer(est Estimator) (Scorer, error) {
	if p, ok := est.(ProbabilityEstimator); ok {
		return &probabilityScorer{est: p}, nil
	}
	if d, ok := est.(DecisionEstimator); ok {
		return &marginScorer{est: d}, nil
	}
	return nil, fmt.Errorf("estimator %s exposes neither probabilities nor decision scores", est.Type())
}

type probabilityScorer struct {
	est ProbabilityEstimator
}

func (s *probabilityScorer) Scores(x SparseVector) []float64 { return s.est.PredictProba(x) }
func (s *probabilityScorer) Kind() ScoreKind                 { return ScoreProbability }
func (s *probabilityScorer) Outputs() int                    { return s.est.Outputs() }
func (s *probabilityScorer) Inputs() int                     { return s.est.Inputs() }

type marginScorer struct {
	est DecisionEstimator
}

func (s *marginScorer) Scores(x SparseVector) []float64 {
	out := s.est.DecisionFunction(x)
	for i, m := range out {
		out[i] = sigmoid(m)
	}
	return out
}

func (s *marginScorer) Kind() ScoreKind { return ScoreMargin }
func (s *marginScorer) Outputs() int    { return s.est.Outputs() }
func (s *marginScorer) Inputs() int     { return s.est.Inputs() }
