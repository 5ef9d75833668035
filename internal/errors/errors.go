// Package errors provides ConfigurationError, the single structured error kind
// raised while resolving a build configuration, plus a CLI adapter for exit codes.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind sub-classifies a ConfigurationError.
type Kind string

const (
	KindNotFound  Kind = "not_found" // configuration file missing
	KindMalformed Kind = "malformed" // unparsable source or wrong field type
	KindAlias     Kind = "alias"     // duplicate or unresolvable alias
	KindPlugin    Kind = "plugin"    // unknown plugin or factory failure
	KindEnv       Kind = "env"       // unreadable .env file
)

// ContextFields carries structured context for ConfigurationError
type ContextFields map[string]any

// ConfigurationError reports why a configuration source could not be resolved.
// All configuration errors are fatal to build startup and never retryable.
type ConfigurationError struct {
	Kind    Kind          `json:"kind"`
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
	Cause   error         `json:"cause,omitempty"`
	Context ContextFields `json:"context,omitempty"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	prefix := "configuration error"
	if e.Field != "" {
		prefix = fmt.Sprintf("configuration error in %s", e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *ConfigurationError) WithContext(key string, value any) *ConfigurationError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ConfigurationError
func New(kind Kind, field, message string) *ConfigurationError {
	return &ConfigurationError{
		Kind:    kind,
		Field:   field,
		Message: message,
	}
}

// Wrap creates a new ConfigurationError that wraps an existing error
func Wrap(err error, kind Kind, field, message string) *ConfigurationError {
	return &ConfigurationError{
		Kind:    kind,
		Field:   field,
		Message: message,
		Cause:   err,
	}
}

// As extracts a ConfigurationError from an error chain.
func As(err error) (*ConfigurationError, bool) {
	var ce *ConfigurationError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err (or any error it wraps) is a ConfigurationError of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := As(err)
	return ok && ce.Kind == kind
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	_, ok := As(err)
	return ok
}
