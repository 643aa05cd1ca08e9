package lg

import (
	"errors"
	"fmt"
)

// ErrNotInitialized indicates a graph mutation was attempted before
// InitFromImage. Proceeding would corrupt the data model, so this is a
// hard failure rather than a soft no-op.
var ErrNotInitialized = errors.New("lg: graph not initialized")

// ConfigurationError reports invalid input to graph initialization,
// such as non-positive source image dimensions.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("lg: invalid configuration: %s: %s", e.Field, e.Reason)
}
