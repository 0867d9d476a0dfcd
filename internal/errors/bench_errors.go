package errors

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a problem with the sweep setup, detected before
// any measurement is attempted.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error (%s): %s", e.Field, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// MeasurementError reports that the operation under measurement failed while
// a dataset size was being processed.
type MeasurementError struct {
	DatasetSize int
	Phase       string
	Err         error
}

// Measurement phases.
const (
	PhaseTiming = "timing"
	PhaseMemory = "memory"
)

// Error implements the error interface
func (e *MeasurementError) Error() string {
	return fmt.Sprintf("measurement failed for dataset size %d (%s): %v", e.DatasetSize, e.Phase, e.Err)
}

func (e *MeasurementError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, message string, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message, Err: err}
}

// NewMeasurementError creates a new MeasurementError
func NewMeasurementError(size int, phase string, err error) *MeasurementError {
	return &MeasurementError{DatasetSize: size, Phase: phase, Err: err}
}

// IsConfiguration reports whether err wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsMeasurement reports whether err wraps a MeasurementError.
func IsMeasurement(err error) bool {
	var mErr *MeasurementError
	return errors.As(err, &mErr)
}
