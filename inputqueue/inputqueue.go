// Package inputqueue holds the Input Queue: a batch of input descriptors
// enumerated by a source.Backend poll, pending open by readerset.Set.
package inputqueue

import (
	"sort"

	"github.com/bgpfix/bgpstream/descriptor"
)

// Queue is an ordered sequence of Descriptors, sorted by descriptor.Less
// ascending. The common case is draining faster than filling, so Push
// inserts at its sorted position (sort.Search) rather than append-then-sort.
type Queue struct {
	items []descriptor.Descriptor
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Push inserts d at its sorted position.
func (q *Queue) Push(d descriptor.Descriptor) {
	i := sort.Search(len(q.items), func(i int) bool {
		return descriptor.Less(d, q.items[i])
	})
	q.items = append(q.items, descriptor.Descriptor{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = d
}

// PushAll inserts every descriptor in ds.
func (q *Queue) PushAll(ds []descriptor.Descriptor) {
	for _, d := range ds {
		q.Push(d)
	}
}

// Pop removes and returns the lowest-keyed Descriptor, or false if empty.
func (q *Queue) Pop() (descriptor.Descriptor, bool) {
	if len(q.items) == 0 {
		return descriptor.Descriptor{}, false
	}
	d := q.items[0]
	q.items = q.items[1:]
	return d, true
}

// Len returns the number of pending descriptors.
func (q *Queue) Len() int {
	return len(q.items)
}

// Drain removes and returns every pending descriptor in order, leaving the
// queue empty.
func (q *Queue) Drain() []descriptor.Descriptor {
	out := q.items
	q.items = nil
	return out
}
