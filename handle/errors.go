package handle

import "errors"

var (
	ErrNoSpace       = errors.New("buffer too small")
	ErrUnsupported   = errors.New("handle api unsupported on this platform")
	ErrInvalidType   = errors.New("invalid handle type")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrInvalidHandle = errors.New("invalid handle")
	ErrNotFound      = errors.New("process not found")
	ErrBadSnapshot   = errors.New("bad snapshot")
)
