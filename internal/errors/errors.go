// Package errors provides the structured error type shared by the game engine,
// its storage layer and the transports that render outcomes to players.
package errors

import stderrors "errors"

// Kind classifies an error by who has to act on it.
type Kind int

const (
	// KindUser is a rejected player action. It is reported back, never retried.
	KindUser Kind = iota
	// KindConsistency means stored data broke an invariant. The mutation is refused.
	KindConsistency
	// KindStorage means persistence failed. Callers may retry.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindConsistency:
		return "consistency"
	default:
		return "storage"
	}
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Kind     Kind              // Derived from Code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context for rendering
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Kind:    code.Kind(),
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for rendering.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Kind:     code.Kind(),
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Kind:    code.Kind(),
		Message: message,
		Cause:   cause,
	}
}

// Storage wraps a persistence failure.
func Storage(message string, cause error) *Error {
	return Wrap(CodeStorageUnavailable, message, cause)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of err, or CodeUnknown.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeUnknown
}

// KindOf returns the kind of err. Errors outside the domain count as storage
// failures since they come from infrastructure.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindStorage
}

// IsUser reports whether err is a rejected player action.
func IsUser(err error) bool {
	return err != nil && KindOf(err) == KindUser
}

// Retryable reports whether the caller may retry the action.
func Retryable(err error) bool {
	return err != nil && KindOf(err) == KindStorage
}
