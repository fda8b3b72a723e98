package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidTag   = errors.New("invalid tag")
	ErrSessionLimit = errors.New("too many sessions")
)
