// Package common holds the error taxonomy shared by the service, guard and
// handler layers, plus the bearer token generator. Match errors with
// errors.Is / errors.As.
package common

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("unauthorized")

	ErrTokenMissing = &AuthenticationError{Kind: AuthMissing}
	ErrTokenInvalid = &AuthenticationError{Kind: AuthInvalid}
)

// AuthErrorKind tells a missing bearer token apart from an unknown one.
type AuthErrorKind string

const (
	AuthMissing AuthErrorKind = "missing"
	AuthInvalid AuthErrorKind = "invalid"
)

// AuthenticationError is produced when a request cannot be tied to a user.
type AuthenticationError struct {
	Kind AuthErrorKind
}

func (e *AuthenticationError) Error() string {
	if e.Kind == AuthMissing {
		return "authentication token required"
	}
	return "invalid authentication token"
}

// Is makes errors.Is(err, ErrTokenInvalid) compare by kind.
func (e *AuthenticationError) Is(target error) bool {
	t, ok := target.(*AuthenticationError)
	return ok && t.Kind == e.Kind
}

// ValidationError carries per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}
