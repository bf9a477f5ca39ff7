package render

import (
	"fmt"

	"github.com/zoobzio/qframe/internal/types"
)

// UnsupportedFeatureError indicates a query uses a feature the dialect lacks.
type UnsupportedFeatureError struct {
	Feature string
	Dialect string
	Hint    string
}

func (e UnsupportedFeatureError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// Is matches types.ErrUnsupportedFeature.
func (UnsupportedFeatureError) Is(target error) bool {
	return target == types.ErrUnsupportedFeature
}

// NewUnsupportedFeatureError creates a new unsupported feature error.
func NewUnsupportedFeatureError(dialect, feature string, hint ...string) error {
	err := UnsupportedFeatureError{Feature: feature, Dialect: dialect}
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	return err
}
