package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur while computing medal boundaries.
var (
	// ErrShapeMismatch indicates that the known boundaries and the goal
	// vector have different lengths.
	ErrShapeMismatch = errors.New("inconsistency in number of possible awards")

	// ErrOutOfRange indicates that an ideal count exceeds every achievable
	// cumulative count.
	ErrOutOfRange = errors.New("ideal number of medals exceeds number of contestants")

	// ErrNoAdmissibleSolution indicates that a bounded search found no
	// candidate for some boundary position.
	ErrNoAdmissibleSolution = errors.New("no admissible boundaries found")

	// ErrMissingBoundary indicates that an algorithm depends on a boundary
	// that has not been resolved yet.
	ErrMissingBoundary = errors.New("required boundary is unresolved")

	// ErrInvalidStats indicates malformed cumulative statistics.
	ErrInvalidStats = errors.New("invalid cumulative statistics")

	// ErrInvalidGoal indicates a malformed goal vector.
	ErrInvalidGoal = errors.New("invalid goal vector")

	// ErrKeyNotFound indicates that a requested state key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// BoundaryError represents a failure of an algorithm to resolve a boundary.
// It records which algorithm failed and at which position of the boundary
// vector, or -1 when the failure is not tied to one position.
type BoundaryError struct {
	// Algorithm names the algorithm that failed.
	Algorithm string

	// Position is the boundary vector index being resolved.
	Position int

	// Err is the underlying error that caused the computation to fail.
	Err error
}

// Error implements the error interface for BoundaryError.
func (e *BoundaryError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("boundary error: algorithm=%s, err=%v", e.Algorithm, e.Err)
	}
	return fmt.Sprintf("boundary error: algorithm=%s, position=%d, err=%v", e.Algorithm, e.Position, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *BoundaryError) Unwrap() error { return e.Err }

// NewBoundaryError creates a new BoundaryError with the given details.
func NewBoundaryError(algorithm string, position int, err error) *BoundaryError {
	return &BoundaryError{
		Algorithm: algorithm,
		Position:  position,
		Err:       err,
	}
}

// StateError represents an error that occurred during State operations.
type StateError struct {
	// Key is the name of the state key involved in the failed operation.
	Key string

	// Operation describes what operation was being performed when the error occurred.
	Operation string

	// Err is the underlying error that caused the operation to fail.
	Err error
}

// Error implements the error interface for StateError.
func (e *StateError) Error() string {
	return fmt.Sprintf("state error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StateError) Unwrap() error { return e.Err }

// NewStateError creates a new StateError with the given details.
func NewStateError(key string, operation string, err error) *StateError {
	return &StateError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
