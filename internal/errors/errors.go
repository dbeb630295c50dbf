// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrDataNotFound   = errors.New("data not found")
	ErrDatabaseError  = errors.New("database error")
	ErrStorageBusy    = errors.New("storage busy")
	ErrProviderFailed = errors.New("provider request failed")
	ErrRateLimited    = errors.New("rate limited")
	ErrTimeout        = errors.New("operation timed out")
)

// ValidationError represents a validation error on a single record field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StorageError represents a structural storage failure. Duplicate-key
// collisions are never wrapped in a StorageError; they are an expected
// outcome, not a failure.
type StorageError struct {
	Op      string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error [%s]: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("storage error [%s]: %s", e.Op, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(op, message string, err error) *StorageError {
	return &StorageError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// FetchError represents a failure to fetch data for one symbol.
type FetchError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error [%s] %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(provider, symbol string, err error) *FetchError {
	return &FetchError{
		Provider: provider,
		Symbol:   symbol,
		Err:      err,
	}
}

// ConfigError represents a configuration error detected at load time.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Key, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigInvalid
}

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
