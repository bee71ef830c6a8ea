package mrt

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Default MRT-BGP reader options
var DefaultReaderOptions = ReaderOptions{
	Logger: &log.Logger,
}

// MRT-BGP Reader options
type ReaderOptions struct {
	Logger *zerolog.Logger // if nil logging is disabled

	// OnMrt is called for every successfully framed and demultiplexed MRT
	// message. mrt.Data and mrt.Bgp4 are only valid for the duration of
	// the call; copy what you need (mrt.CopyData()) to keep it longer.
	OnMrt func(mrt *Mrt) error
}
