package domain

import "errors"

var (
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("access forbidden")
	ErrNotFound             = errors.New("user not found")
	ErrAlreadyExists        = errors.New("user already exists")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrTokenMalformed       = errors.New("malformed token")
)
