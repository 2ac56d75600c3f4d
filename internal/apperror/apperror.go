package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide whether retrying,
// falling back, or surfacing the error is appropriate.
type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindUpstream    Kind = "UPSTREAM"
	KindPersistence Kind = "PERSISTENCE"
)

// Upstream sources. Model and artifact-store failures stay distinct so
// the dispatcher never persists a message referencing a failed upload.
const (
	SourceModel         = "model"
	SourceArtifactStore = "artifact-store"
)

type AppError struct {
	Kind    Kind
	Source  string // set for upstream errors only
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidation(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Err: err}
}

func NewNotFound(message string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Err: err}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func NewUpstream(source, message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Source: source, Message: message, Err: err}
}

// NewPersistence flags a store write that failed after a successful
// external call. The paid side effect already happened, so callers must
// not retry blindly.
func NewPersistence(message string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf extracts the kind from any error in the chain. Unclassified
// errors report as persistence failures, the most conservative default.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
