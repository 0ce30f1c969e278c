package artifact

import (
	"errors"
	"fmt"
)

// Source is the configured artifact origin.
type Source struct {
	ModelDir string
	BlobURL  string
}

// Plan is the outcome of Locate.
type Plan struct {
	Strategy Strategy
	Dir      string
	URL      string
}

// Locate decides where the bundle comes from. It only reads the filesystem
// and may be called any number of times.
func Locate(src Source) (Plan, error) {
	if src.ModelDir == "" {
		return Plan{}, &ConfigurationError{Reason: "model directory is not set"}
	}

	verr := Validate(src.ModelDir)
	if verr == nil {
		return Plan{Strategy: StrategyLocal, Dir: src.ModelDir}, nil
	}

	if src.BlobURL != "" {
		return Plan{Strategy: StrategyRemote, Dir: src.ModelDir, URL: src.BlobURL}, nil
	}

	var ve *ValidationError
	if errors.As(verr, &ve) && len(ve.Missing) == len(RequiredFiles) {
		return Plan{}, &ConfigurationError{
			Reason: fmt.Sprintf("no bundle in %s and no blob URL configured", src.ModelDir),
			Err:    verr,
		}
	}
	return Plan{}, &ConfigurationError{
		Reason: fmt.Sprintf("incomplete bundle in %s and no blob URL configured", src.ModelDir),
		Err:    verr,
	}
}
