package staging

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the expected failure modes of the staging layer.
// Callers branch on kinds rather than matching error strings.
type ErrorKind string

const (
	// KindStorageUnsupported means no durable staging backend is available.
	KindStorageUnsupported ErrorKind = "storage_unsupported"
	// KindNotFound means a read, get, or update targeted a missing entry.
	KindNotFound ErrorKind = "not_found"
	// KindSaveFailed means writing a staged binary or its metadata failed.
	KindSaveFailed ErrorKind = "save_failed"
	// KindDeleteFailed means removing a staged entry failed.
	KindDeleteFailed ErrorKind = "delete_failed"
	// KindUpdateFailed means overwriting a metadata record failed.
	KindUpdateFailed ErrorKind = "update_failed"
	// KindLoadFailed means enumerating or reading back stored entries failed.
	KindLoadFailed ErrorKind = "load_failed"
	// KindValidationFailed means a record does not conform to the expected schema.
	KindValidationFailed ErrorKind = "validation_failed"
)

// Error is the single error type returned by staging repositories. Platform
// failures are wrapped at the repository boundary so nothing backend-specific
// leaks to callers.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("staging.%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("staging.%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// newError wraps err with a kind and the failing operation name.
func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, or the empty string when err does not carry
// a staging classification.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
