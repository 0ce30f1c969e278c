package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alexandrapadonou/tagStackoverflow/internal/artifact"
)

// LoadDir validates dir and loads the bundle it holds. A linked dir is
// resolved once, so every file comes from the same published version.
func LoadDir(dir string) (*State, error) {
	start := time.Now()

	linked := dir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}

	if err := artifact.Validate(dir); err != nil {
		return nil, err
	}

	size, err := bundleSize(dir)
	if err != nil {
		return nil, err
	}

	var (
		vecSpec VectorizerSpec
		estSpec EstimatorSpec
		binSpec BinarizerSpec
		cfgData []byte
	)

	var g errgroup.Group
	g.Go(func() error { return decodeFile(dir, artifact.VectorizerFile, &vecSpec) })
	g.Go(func() error { return decodeFile(dir, artifact.EstimatorFile, &estSpec) })
	g.Go(func() error { return decodeFile(dir, artifact.BinarizerFile, &binSpec) })
	g.Go(func() error {
		data, err := os.ReadFile(filepath.Join(dir, artifact.ConfigFile))
		if err != nil {
			return malformed(dir, artifact.ConfigFile, err)
		}
		cfgData = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cfg, err := ParseBundleConfig(cfgData)
	if err != nil {
		return nil, malformed(dir, artifact.ConfigFile, err)
	}

	vectorizer, err := NewVectorizer(vecSpec)
	if err != nil {
		return nil, malformed(dir, artifact.VectorizerFile, err)
	}

	est, err := NewEstimator(estSpec)
	if err != nil {
		return nil, malformed(dir, artifact.EstimatorFile, err)
	}

	labels, err := NewBinarizer(binSpec.Classes)
	if err != nil {
		return nil, malformed(dir, artifact.BinarizerFile, err)
	}

	scorer, err := NewScorer(est)
	if err != nil {
		return nil, malformed(dir, artifact.EstimatorFile, err)
	}

	meta := Metadata{
		Dir:           linked,
		BundleBytes:   size,
		LoadedAt:      time.Now(),
		LoadDuration:  time.Since(start),
		EstimatorType: est.Type(),
	}
	if dir != linked {
		meta.Resolved = dir
	}
	return NewState(vectorizer, scorer, labels, cfg, meta)
}

func bundleSize(dir string) (int64, error) {
	var total int64
	for _, name := range artifact.RequiredFiles {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return 0, malformed(dir, name, err)
		}
		total += fi.Size()
	}
	return total, nil
}

func decodeFile(dir, name string, v any) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return malformed(dir, name, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return malformed(dir, name, fmt.Errorf("decode: %w", err))
	}
	return nil
}

func malformed(dir, name string, err error) error {
	return &artifact.ValidationError{
		Dir:       dir,
		Malformed: map[string]string{name: err.Error()},
	}
}
