package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGridSize is returned when the cell count cannot describe a grid.
	ErrInvalidGridSize = errors.New("grid size must be positive")
	// ErrEmptyColorScale is returned when no zero-count bucket is configured.
	ErrEmptyColorScale = errors.New("color scale is empty")
	// ErrInvalidColorScale is returned for unordered thresholds or malformed colors.
	ErrInvalidColorScale = errors.New("invalid color scale")
)

// ConfigError reports a mapper misconfiguration detected at construction.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("grid config: %v", e.Err)
	}
	return fmt.Sprintf("grid config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AsConfigError attempts to unwrap err into a ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}
