package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key collision on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnavailable indicates the store could not be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// Kind classifies a failure surfaced to callers.
type Kind string

const (
	KindConnection   Kind = "connection_failure"
	KindQuery        Kind = "query_failure"
	KindConflict     Kind = "conflict"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
)

// Error is a classified failure with a message that is safe to return to clients.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps input field names to the rule they broke. Only set for KindInvalidInput.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid builds a KindInvalidInput error.
func Invalid(message string, fields map[string]string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Fields: fields}
}

// KindOf reports the classification of err. Unclassified errors are query failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrUnavailable):
		return KindConnection
	case errors.Is(err, ErrAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindQuery
	}
}
