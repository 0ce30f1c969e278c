// Package artifact locates, downloads, validates and publishes the model
// artifact bundle.
//
// A bundle is a directory holding exactly the four files listed in
// RequiredFiles and nothing else. Remote bundles are zip archives; they are
// extracted into a staging directory next to the destination, moved into a
// versions directory and published by renaming a symlink over the
// destination, so readers never see a missing or partially extracted bundle.
package artifact

const (
	VectorizerFile = "vectorizer.json"
	EstimatorFile  = "estimator.json"
	BinarizerFile  = "mlb.json"
	ConfigFile     = "config.json"
)

// RequiredFiles is the complete bundle layout.
var RequiredFiles = []string{VectorizerFile, EstimatorFile, BinarizerFile, ConfigFile}

// Strategy tells where the bundle comes from.
type Strategy string

const (
	StrategyLocal  Strategy = "local"
	StrategyRemote Strategy = "remote"
)

func (s Strategy) String() string {
	return string(s)
}

// Bundle is a validated bundle directory ready for loading.
type Bundle struct {
	Dir      string   `json:"dir"`
	Strategy Strategy `json:"strategy"`
	// Downloaded is the archive size in bytes for remote bundles.
	Downloaded int64 `json:"downloaded,omitempty"`
}
