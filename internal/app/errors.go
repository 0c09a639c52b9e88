package app

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserNotFound        = errors.New("user not found")
	ErrUpstreamFailure     = errors.New("completion provider failed")
	ErrEmailExists         = errors.New("user with this email already exists")
	ErrInvalidCredential   = errors.New("invalid email or password")
	ErrPostNotFound        = errors.New("post not found")
	ErrAccountNotFound     = errors.New("social account not found")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrNoFiles             = errors.New("no files uploaded")
	ErrFileTooLarge        = errors.New("file too large")
)
