package filterset

import "errors"

var (
	ErrInvalidFilter = errors.New("invalid filter value")
	ErrNoInterval    = errors.New("no time interval configured")
	ErrFrozen        = errors.New("filter set is frozen")
)
