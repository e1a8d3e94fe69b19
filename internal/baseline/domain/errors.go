package baseline

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is wrapped by every ParseError.
	ErrParse = errors.New("baseline: parse error")
	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("baseline: invalid config")
	// ErrInvalidDayType is returned when a day type is unsupported.
	ErrInvalidDayType = errors.New("baseline: invalid day type")
	// ErrInvalidInvokedUnit is returned when invoked_unit is not 0 or 1.
	ErrInvalidInvokedUnit = errors.New("baseline: invoked_unit must be 0 or 1")
	// ErrEmptySubjectID is returned when a result set has no subject.
	ErrEmptySubjectID = errors.New("baseline: empty subject id")
	// ErrUnknownSubject is returned when no demand source serves a subject.
	ErrUnknownSubject = errors.New("baseline: unknown subject")
)

// ParseError identifies an input row that could not be parsed.
// Row is 1-based and counts the header line.
type ParseError struct {
	Source string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("baseline: parse %s row %d field %s value %q", e.Source, e.Row, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// ConfigError reports a missing or invalid configuration key.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("baseline: config %s: %s", e.Key, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// MissingKey builds a ConfigError for an absent required key.
func MissingKey(key string) *ConfigError {
	return &ConfigError{Key: key, Reason: "required key missing"}
}
