package readerset

import "errors"

var (
	ErrOpen       = errors.New("could not open archive")
	ErrDecode     = errors.New("MRT decode failure")
	errFoundMatch = errors.New("readerset: admitted record found, pausing scan")
)
