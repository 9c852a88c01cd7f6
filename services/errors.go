package services

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrUnavailable  = errors.New("feature not configured")
	ErrUpstream     = errors.New("upstream service failed")
)
