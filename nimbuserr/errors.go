// Package nimbuserr defines the closed error taxonomy shared by the router
// and event bus: a small set of named kinds with HTTP status affinities, a
// details payload for structured context (such as schema validation
// issues), and adapters for wrapping foreign errors without losing the
// taxonomy.
package nimbuserr

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind is a closed set of error variants. New kinds are never added by
// callers; they are exactly the five named in the error handling design.
type Kind string

const (
	// InvalidInput covers a missing type attribute at routing time, schema
	// validation failures, and any other caller-supplied-data problem.
	InvalidInput Kind = "InvalidInput"
	// Unauthorized is reserved for transport adapters outside this core.
	Unauthorized Kind = "Unauthorized"
	// Forbidden is reserved for transport adapters outside this core.
	Forbidden Kind = "Forbidden"
	// NotFound is raised when no handler is registered for a dispatch key.
	NotFound Kind = "NotFound"
	// Generic covers event-size violations, exhausted subscriber retries,
	// and fallback wrapping of foreign errors with no more specific kind.
	Generic Kind = "Generic"
)

// StatusCode returns the HTTP status affinity for a kind, per the error
// handling design's table.
func (k Kind) StatusCode() int {
	switch k {
	case InvalidInput:
		return 400
	case Unauthorized:
		return 401
	case Forbidden:
		return 403
	case NotFound:
		return 404
	case Generic:
		return 500
	default:
		return 500
	}
}

// Error is the concrete error type every taxonomy member uses. It satisfies
// the error interface and Unwrap so callers can still errors.Is/As through
// to a wrapped cause.
type Error struct {
	Kind       Kind
	Message    string
	Details    map[string]any
	StatusCode int
	Stack      string

	cause error
}

// New constructs an Error of the given kind with a message and no details.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		StatusCode: kind.StatusCode(),
		Stack:      captureStack(),
	}
}

// WithDetails returns a copy of e whose Details are replaced by details.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes a wrapped foreign cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is(err, nimbuserr.InvalidInput) style checks work by
// comparing kinds rather than pointer identity. Pass any *Error of the
// wanted kind as the target, or read the kind directly via KindOf.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Issue mirrors a single schema validator finding: a JSON pointer-ish path,
// a machine-readable code, a human message, and the expected/received
// values when the validator can produce them.
type Issue struct {
	Path     []string `json:"path"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
}

// FromSchemaIssues builds an InvalidInput error carrying the validator's
// issue list in Details["issues"], per the router's validation-failure
// contract.
func FromSchemaIssues(message string, issues []Issue) *Error {
	return New(InvalidInput, message).WithDetails(map[string]any{
		"issues": issues,
	})
}

// FromError wraps a foreign error, adopting its message while preserving
// the requested taxonomy kind and status code. If err is already a
// *Error, it is returned unchanged so the original kind is never
// overwritten by a well-meaning caller re-wrapping it.
func FromError(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	e := New(kind, err.Error())
	e.cause = err
	return e
}

func captureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	out := ""
	for {
		frame, more := frames.Next()
		out += fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return out
}
