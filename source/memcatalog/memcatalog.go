// Package memcatalog is the lightweight embedded-catalog backend: an
// in-process slice of descriptors supplied directly by the host program,
// with no I/O of its own. Used by this module's own tests and by hosts
// that already enumerate files some other way.
package memcatalog

import (
	"context"
	"sort"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/source"
)

func init() {
	source.Register("mem", func() source.Backend { return New(nil) })
}

// Backend serves a fixed, host-supplied list of descriptors.
type Backend struct {
	all    []descriptor.Descriptor
	served map[descriptor.Identity]struct{}
}

// New returns a Backend that will serve descs, each exactly once across
// successive Poll calls (same contract as source/singlefile).
func New(descs []descriptor.Descriptor) *Backend {
	sorted := append([]descriptor.Descriptor(nil), descs...)
	sort.Slice(sorted, func(i, j int) bool { return descriptor.Less(sorted[i], sorted[j]) })
	return &Backend{all: sorted}
}

// Add appends descriptors to the backend's list, usable before or after
// Start; a test fixture commonly calls this instead of New.
func (b *Backend) Add(descs ...descriptor.Descriptor) {
	b.all = append(b.all, descs...)
	sort.Slice(b.all, func(i, j int) bool { return descriptor.Less(b.all[i], b.all[j]) })
}

func (b *Backend) Configure(option, value string) error {
	return source.ErrUnknownOption
}

func (b *Backend) Start(ctx context.Context) error {
	b.served = make(map[descriptor.Identity]struct{})
	return nil
}

func (b *Backend) Poll(ctx context.Context, fs *filterset.Set, from, to uint32) ([]descriptor.Descriptor, source.Status, error) {
	var out []descriptor.Descriptor
	for _, d := range b.all {
		id := d.Identity()
		if _, done := b.served[id]; done {
			continue
		}
		if d.FileTime < from || d.FileTime > to {
			continue
		}
		if fs != nil && !fs.CoarseMatch(d) {
			continue
		}
		b.served[id] = struct{}{}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, source.Empty, nil
	}
	return out, source.OK, nil
}

func (b *Backend) Close() error {
	return nil
}
