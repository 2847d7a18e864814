package domain

import "errors"

// Identity and credential errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrCorruptCredential = errors.New("stored credential is corrupt")
	ErrPasswordTooLong   = errors.New("password too long")
	ErrTooManyAttempts   = errors.New("too many failed login attempts")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// ErrInvalidCredentials is the generic login failure. ErrInvalidEmail and
// ErrInvalidPassword are its differentiated forms; both match it with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       error = &credentialError{msg: "invalid email"}
	ErrInvalidPassword    error = &credentialError{msg: "invalid password"}
)

type credentialError struct {
	msg string
}

func (e *credentialError) Error() string { return e.msg }

func (e *credentialError) Is(target error) bool { return target == ErrInvalidCredentials }

// Token and gate errors.
var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Resource errors.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectExists    = errors.New("project already exists")
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidReference = errors.New("referenced record does not exist")
)
