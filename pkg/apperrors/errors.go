package apperrors

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrUnavailable            = errors.New("service unavailable")
	ErrRejected               = errors.New("request rejected")
	ErrNoActiveConnection     = errors.New("no active connection")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrCredentialsKeyMismatch = errors.New("connection credentials were encrypted with a different key")
)
