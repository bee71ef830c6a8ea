package stream

import "errors"

var (
	ErrInvalidState   = errors.New("operation invalid in current state")
	ErrUnknownBackend = errors.New("unknown data interface backend")
	ErrInterrupted    = errors.New("interrupted")
	ErrBackendFatal   = errors.New("backend failed too many times")
)
