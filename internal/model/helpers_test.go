package model

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandrapadonou/tagStackoverflow/internal/artifact"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	vectorizer VectorizerSpec
	estimator  EstimatorSpec
	binarizer  BinarizerSpec
	config     map[string]any
}

// newFixture is a three-label bundle over a three-term vocabulary.
func newFixture() fixture {
	return fixture{
		vectorizer: VectorizerSpec{
			Vocabulary: map[string]int{"python": 0, "pandas": 1, "endpoint": 2},
			IDF:        []float64{1, 1, 1},
		},
		estimator: EstimatorSpec{
			Type: EstimatorLogisticRegression,
			Coef: [][]float64{
				{4, 2, 0},
				{0, 0, 4},
				{0, 3, 0},
			},
			Intercept: []float64{-1, -1, -1},
		},
		binarizer: BinarizerSpec{Classes: []string{"python", "api", "ml"}},
		config:    map[string]any{"top_k": 2, "threshold": 0.3},
	}
}

func (f fixture) write(t *testing.T, dir string) {
	t.Helper()
	files := map[string]any{
		artifact.VectorizerFile: f.vectorizer,
		artifact.EstimatorFile:  f.estimator,
		artifact.BinarizerFile:  f.binarizer,
		artifact.ConfigFile:     f.config,
	}
	for name, v := range files {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}
