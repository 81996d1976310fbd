package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the expected business outcomes. Services return
// these (wrapped in *Error) so callers can branch with errors.Is and
// the HTTP layer can map each one to a specific status and code.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyPaired = errors.New("already paired")
	ErrNoPartner     = errors.New("no partner")
	ErrSelfPairing   = errors.New("self pairing")
	ErrCodeNotFound  = errors.New("pair code not found")
	ErrHasDependents = errors.New("has dependents")
	ErrCodeExhausted = errors.New("pair code generation exhausted")
)

type Error struct {
	Err     error  // sentinel, reachable via errors.Is
	Message string // human-readable, safe to show to the client
	Field   string // optional: field causing a validation error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(field, message string) *Error {
	return &Error{Err: ErrValidation, Message: message, Field: field}
}

func NotFound(resource string, id uint64) *Error {
	return &Error{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %d not found", resource, id),
	}
}

func Unauthorized(message string) *Error {
	return &Error{Err: ErrUnauthorized, Message: message}
}

func AlreadyPaired() *Error {
	return &Error{Err: ErrAlreadyPaired, Message: "user already has a partner"}
}

func NoPartner() *Error {
	return &Error{Err: ErrNoPartner, Message: "user has no partner"}
}

func SelfPairing() *Error {
	return &Error{Err: ErrSelfPairing, Message: "cannot pair with yourself"}
}

func CodeNotFound() *Error {
	return &Error{Err: ErrCodeNotFound, Message: "no user holds this pair code"}
}

func HasDependents(resource string, id uint64) *Error {
	return &Error{
		Err:     ErrHasDependents,
		Message: fmt.Sprintf("%s %d still has dependent records", resource, id),
	}
}

func CodeExhausted() *Error {
	return &Error{Err: ErrCodeExhausted, Message: "could not generate a unique pair code"}
}
