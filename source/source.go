// Package source holds the Data Interface contract: the pluggable backend
// that, given a filter set and a time window, enumerates matching archive
// files as input descriptors. Concrete backends live in subpackages.
package source

import (
	"context"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
)

// Status is a Poll outcome.
type Status uint8

const (
	OK Status = iota
	Empty
	Error
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Empty:
		return "empty"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Backend is the contract every data-interface implementation satisfies:
// configure, start, poll, close. A capability set, not a class hierarchy.
type Backend interface {
	// Configure sets a backend-specific option from its published list.
	Configure(option, value string) error

	// Start opens resources (file handles, connections, HTTP clients).
	Start(ctx context.Context) error

	// Poll returns descriptors matching fs for the advisory window
	// [from, to]. Backends MAY return descriptors outside the window;
	// each backend is responsible for calling filterset.Set.CoarseMatch
	// itself (the coordinator never re-checks it).
	Poll(ctx context.Context, fs *filterset.Set, from, to uint32) ([]descriptor.Descriptor, Status, error)

	// Close releases resources. Idempotent.
	Close() error
}

// Factory constructs a fresh, unconfigured Backend.
type Factory func() Backend

// Registry maps a backend name (as passed to stream.Coordinator's
// SetDataInterface) to its Factory. Populated by each backend subpackage's
// init(), avoiding an import cycle back into source itself.
var Registry = map[string]Factory{}

// Register adds name to Registry. Backend subpackages call this from
// init().
func Register(name string, f Factory) {
	Registry[name] = f
}
