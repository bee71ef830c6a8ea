package source

import "errors"

var (
	ErrUnknownBackend     = errors.New("unknown data interface backend")
	ErrUnknownOption      = errors.New("unknown backend option")
	ErrInvalidOptionValue = errors.New("invalid backend option value")
	ErrBackendStart       = errors.New("backend start failed")
	ErrBackendQuery       = errors.New("backend query failed")
)
