package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrBadRequest    = errors.New("bad request")
	ErrUnprocessable = errors.New("unprocessable entity")
	ErrInternal      = errors.New("internal server error")
)

// Error is a user-facing failure of a known kind. Its message is safe to return
// to the client; errors.Is matches both the Error value itself and its Kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Bad request.
var (
	ErrInvalidAuthType       = newError(ErrBadRequest, MsgInvalidAuthType)
	ErrInvalidAuthMethod     = newError(ErrBadRequest, MsgInvalidAuthMethod)
	ErrNotExpiredOTP         = newError(ErrBadRequest, MsgNotExpiredOTP)
	ErrInvalidRegisterMethod = newError(ErrBadRequest, MsgInvalidRegisterMethod)
	ErrInvalidToken          = newError(ErrBadRequest, MsgInvalidToken)
	ErrSomethingWentWrong    = newError(ErrBadRequest, MsgSomethingWentWrong)
	ErrChangeTokenMissing    = newError(ErrBadRequest, MsgExpiredCode)
	ErrChangeExpiredCode     = newError(ErrBadRequest, MsgExpiredCode)
	ErrChangeIncorrectCode   = newError(ErrBadRequest, MsgIncorrectCode)
	ErrChangeOtpNotFound     = newError(ErrBadRequest, MsgOtpNotFound)
	ErrReservedUsername      = newError(ErrBadRequest, MsgReservedUsername)
)

// Unauthorized.
var (
	ErrInvalidData         = newError(ErrUnauthorized, MsgInvalidData)
	ErrExpiredCode         = newError(ErrUnauthorized, MsgExpiredCode)
	ErrAuthorizationFailed = newError(ErrUnauthorized, MsgAuthorizationFailed)
	ErrIncorrectCode       = newError(ErrUnauthorized, MsgIncorrectCode)
	ErrOtpNotFound         = newError(ErrUnauthorized, MsgOtpNotFound)
)

// Conflict.
var (
	ErrAccountExists     = newError(ErrConflict, MsgAccountExists)
	ErrDuplicateEmail    = newError(ErrConflict, MsgDuplicateEmail)
	ErrDuplicatePhone    = newError(ErrConflict, MsgDuplicatePhone)
	ErrDuplicateUsername = newError(ErrConflict, MsgDuplicateUsername)
)

// Unprocessable.
var (
	ErrInvalidEmail    = newError(ErrUnprocessable, MsgInvalidEmail)
	ErrInvalidPhone    = newError(ErrUnprocessable, MsgInvalidPhone)
	ErrInvalidUsername = newError(ErrUnprocessable, MsgInvalidUsername)
	ErrUsernameFormat  = newError(ErrUnprocessable, MsgUsernameFormat)
)

// DispatchError reports a failed out-of-band OTP delivery. It matches both
// ErrInternal and the underlying provider error.
type DispatchError struct {
	Provider string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *DispatchError) Unwrap() []error { return []error{ErrInternal, e.Err} }
