package model

import (
	"fmt"
	"math"
)

// EstimatorType names the fitted classifier family stored in estimator.json.
type EstimatorType string

const (
	EstimatorLogisticRegression EstimatorType = "logistic_regression"
	EstimatorLinearSVC          EstimatorType = "linear_svc"
	EstimatorRidgeClassifier    EstimatorType = "ridge_classifier"
	EstimatorSGDClassifier      EstimatorType = "sgd_classifier"
)

func (t EstimatorType) String() string {
	return string(t)
}

// EstimatorSpec is the on-disk form of a one-vs-rest linear classifier: one
// coefficient row and intercept per label.
type EstimatorSpec struct {
	Type      EstimatorType `json:"type"`
	Coef      [][]float64   `json:"coef"`
	Intercept []float64     `json:"intercept"`
	// NFeatures is optional and cross-checked against the coefficient width.
	NFeatures int `json:"n_features,omitempty"`
}

// Estimator is a fitted multi-label classifier.
type Estimator interface {
	Type() EstimatorType
	// Outputs is the number of labels scored.
	Outputs() int
	// Inputs is the expected feature width.
	Inputs() int
}

// ProbabilityEstimator yields per-label probabilities in [0,1].
type ProbabilityEstimator interface {
	Estimator
	PredictProba(x SparseVector) []float64
}

// DecisionEstimator yields unbounded per-label margins.
type DecisionEstimator interface {
	Estimator
	DecisionFunction(x SparseVector) []float64
}

// NewEstimator builds the estimator described by spec.
func NewEstimator(spec EstimatorSpec) (Estimator, error) {
	lin, err := newLinear(spec)
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case EstimatorLogisticRegression:
		return &LogisticClassifier{linear: lin}, nil
	case EstimatorLinearSVC, EstimatorRidgeClassifier, EstimatorSGDClassifier:
		return &MarginClassifier{linear: lin, kind: spec.Type}, nil
	case "":
		return nil, fmt.Errorf("estimator type is not set")
	default:
		return nil, fmt.Errorf("unknown estimator type: %s", spec.Type)
	}
}

type linear struct {
	coef      [][]float64
	intercept []float64
	inputs    int
}

func newLinear(spec EstimatorSpec) (linear, error) {
	if len(spec.Coef) == 0 {
		return linear{}, fmt.Errorf("no coefficient rows")
	}

	width := len(spec.Coef[0])
	for i, row := range spec.Coef {
		if len(row) != width {
			return linear{}, fmt.Errorf("coefficient row %d has width %d, want %d", i, len(row), width)
		}
	}
	if spec.NFeatures != 0 && spec.NFeatures != width {
		return linear{}, fmt.Errorf("n_features is %d but coefficients have width %d", spec.NFeatures, width)
	}

	intercept := spec.Intercept
	switch len(intercept) {
	case 0:
		intercept = make([]float64, len(spec.Coef))
	case len(spec.Coef):
	default:
		return linear{}, fmt.Errorf("%d intercepts for %d labels", len(intercept), len(spec.Coef))
	}

	return linear{coef: spec.Coef, intercept: intercept, inputs: width}, nil
}

func (l linear) Outputs() int { return len(l.coef) }
func (l linear) Inputs() int  { return l.inputs }

func (l linear) margins(x SparseVector) []float64 {
	out := make([]float64, len(l.coef))
	for i, row := range l.coef {
		out[i] = x.Dot(row) + l.intercept[i]
	}
	return out
}

// LogisticClassifier is one-vs-rest logistic regression.
type LogisticClassifier struct {
	linear
}

func (c *LogisticClassifier) Type() EstimatorType { return EstimatorLogisticRegression }

func (c *LogisticClassifier) DecisionFunction(x SparseVector) []float64 {
	return c.margins(x)
}

func (c *LogisticClassifier) PredictProba(x SparseVector) []float64 {
	out := c.margins(x)
	for i, m := range out {
		out[i] = sigmoid(m)
	}
	return out
}

// MarginClassifier covers linear models that only expose a decision
// function.
type MarginClassifier struct {
	linear
	kind EstimatorType
}

func (c *MarginClassifier) Type() EstimatorType { return c.kind }

func (c *MarginClassifier) DecisionFunction(x SparseVector) []float64 {
	return c.margins(x)
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
