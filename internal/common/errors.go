// Package common provides shared utilities and types used across the engine.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Artifact load errors. Any of these at startup means the process must
	// not begin serving.
	ErrArtifactMissing  = errors.New("artifact file missing")
	ErrArtifactCorrupt  = errors.New("artifact file corrupt")
	ErrArtifactMismatch = errors.New("artifacts are inconsistent with each other")

	// Programming-contract errors. These indicate a caller bug, not a bad
	// request, and are never converted into soft results.
	ErrInvalidK         = errors.New("k must be positive")
	ErrSnapshotNotReady = errors.New("engine snapshot not loaded")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsLoadFatal reports whether the error belongs to the artifact-load
// taxonomy, i.e. the process must refuse to serve traffic.
func IsLoadFatal(err error) bool {
	return errors.Is(err, ErrArtifactMissing) ||
		errors.Is(err, ErrArtifactCorrupt) ||
		errors.Is(err, ErrArtifactMismatch)
}
