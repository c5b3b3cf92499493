package spatial

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrDuplicateNode      = errors.New("duplicate node")
	ErrUnknownNode        = errors.New("unknown node")
	ErrSelfLoop           = errors.New("self loop")
	ErrInvalidID          = errors.New("invalid node id")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op    string // Operation that failed (e.g., "AddNode", "AddEdge")
	ID    string // Offending node id
	Other string // Second endpoint for edge operations
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Other != "" {
		return fmt.Sprintf("%s %q-%q: %v", e.Op, e.ID, e.Other, e.Cause)
	}
	if e.ID != "" {
		return fmt.Sprintf("%s node %q: %v", e.Op, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func nodeError(op, id string, cause error) error {
	return &StoreError{Op: op, ID: id, Cause: cause}
}

func edgeError(op, id1, id2 string, cause error) error {
	return &StoreError{Op: op, ID: id1, Other: id2, Cause: cause}
}
