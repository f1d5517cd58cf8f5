package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUpstream       = errors.New("upstream failure")
	ErrNotImplemented = errors.New("not implemented")
)
