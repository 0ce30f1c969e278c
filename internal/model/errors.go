package model

import "fmt"

// IncompatibleArtifactsError means the bundle files were fitted separately
// and do not agree on a dimension.
type IncompatibleArtifactsError struct {
	Dimension string
	Want      int
	Got       int
}

func (e *IncompatibleArtifactsError) Error() string {
	return fmt.Sprintf("incompatible artifacts: %s: want %d, got %d", e.Dimension, e.Want, e.Got)
}
