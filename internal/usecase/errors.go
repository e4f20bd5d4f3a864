package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrIllegalState          = errors.New("illegal state")
	ErrBusy                  = errors.New("operation already in progress")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
