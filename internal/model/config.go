package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/alexandrapadonou/tagStackoverflow/internal/textproc"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.0
)

// BundleConfig is the inference policy shipped with the model.
type BundleConfig struct {
	TopK       int                   `json:"top_k"`
	Threshold  float64               `json:"threshold"`
	Preprocess textproc.CleanOptions `json:"preprocess"`
	Version    string                `json:"version,omitempty"`
}

type bundleConfigFile struct {
	TopK       *int     `json:"top_k"`
	LegacyTopK *int     `json:"topk"`
	Threshold  *float64 `json:"threshold"`
	Version    string   `json:"version"`
	textproc.CleanOptions
}

// ParseBundleConfig decodes config.json. Absent keys take the built-in
// defaults; "topk" is accepted for older bundles.
func ParseBundleConfig(data []byte) (BundleConfig, error) {
	var raw bundleConfigFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return BundleConfig{}, err
	}

	cfg := BundleConfig{
		TopK:       DefaultTopK,
		Threshold:  DefaultThreshold,
		Preprocess: raw.CleanOptions,
		Version:    raw.Version,
	}

	switch {
	case raw.TopK != nil:
		cfg.TopK = *raw.TopK
	case raw.LegacyTopK != nil:
		cfg.TopK = *raw.LegacyTopK
	}
	if raw.Threshold != nil {
		cfg.Threshold = *raw.Threshold
	}

	if cfg.TopK < 1 {
		return BundleConfig{}, fmt.Errorf("top_k must be >= 1, got %d", cfg.TopK)
	}
	if math.IsNaN(cfg.Threshold) || math.IsInf(cfg.Threshold, 0) {
		return BundleConfig{}, fmt.Errorf("threshold must be finite")
	}
	if cfg.Preprocess.MaxChars < 0 {
		return BundleConfig{}, fmt.Errorf("max_chars must be >= 0, got %d", cfg.Preprocess.MaxChars)
	}

	return cfg, nil
}
