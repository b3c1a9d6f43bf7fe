// Package fault defines the typed error taxonomy shared across the service.
// Callers branch on Kind, never on message text; inspecting raw provider
// error strings is confined to the ai package's classifier.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for boundary handling.
type Kind int

const (
	// Internal covers unexpected failures with no recovery path.
	Internal Kind = iota
	// Validation covers bad input: unsupported extension, oversize, empty content.
	Validation
	// NotFound covers unknown document ids.
	NotFound
	// NoContent covers retrieval that matched zero chunks, distinct from a
	// generic failure so callers can report "no relevant content found".
	NoContent
	// Transient covers network failures, quota exhaustion, and timeouts.
	Transient
	// Config covers missing or invalid credentials detected before any call
	// attempt; retrying would not help.
	Config
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case NoContent:
		return "no_content"
	case Transient:
		return "transient"
	case Config:
		return "config"
	default:
		return "internal"
	}
}

// Error pairs an underlying error with its classification.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error from a format string.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. Wrapping nil returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the classified kind, defaulting to Internal for plain errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// HTTPStatus maps an error to the status reported at the API boundary.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case NoContent:
		return http.StatusUnprocessableEntity
	case Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
