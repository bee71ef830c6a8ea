package readerset

import (
	"container/heap"
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/record"
)

// Set is the Reader Set: every currently-open dump reader, ordered by
// (head timestamp, collector, dump type RIB<Updates, insertion sequence).
// It implements container/heap.Interface directly, the same spirit as the
// teacher's small self-contained types satisfying a stdlib interface
// rather than wrapping a generic library.
type Set struct {
	logger  *zerolog.Logger
	ready   []*Reader // heap of readers with a primed head, container/heap order
	nextSeq uint64

	Failed []*Reader // readers that moved to Failed, kept for S6's side channel
}

// New returns an empty Set.
func New(logger *zerolog.Logger) *Set {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Set{logger: logger}
}

func (s *Set) Len() int { return len(s.ready) }

func (s *Set) Less(i, j int) bool {
	a, b := s.ready[i], s.ready[j]
	if a.head.Timestamp != b.head.Timestamp {
		return a.head.Timestamp < b.head.Timestamp
	}
	if a.head.Collector != b.head.Collector {
		return a.head.Collector < b.head.Collector
	}
	if a.head.Type != b.head.Type {
		return a.head.Type < b.head.Type // DumpRIB < DumpUpdates
	}
	return a.seq < b.seq
}

func (s *Set) Swap(i, j int) { s.ready[i], s.ready[j] = s.ready[j], s.ready[i] }

func (s *Set) Push(x any) { s.ready = append(s.ready, x.(*Reader)) }

func (s *Set) Pop() any {
	n := len(s.ready)
	r := s.ready[n-1]
	s.ready[n-1] = nil
	s.ready = s.ready[:n-1]
	return r
}

// Add opens one descriptor and, if it primes a head record, inserts it into
// the heap. A descriptor that opens to immediate EOF is dropped; one that
// fails is appended to s.Failed and its error returned. Neither is inserted.
func (s *Set) Add(ctx context.Context, d descriptor.Descriptor, fs *filterset.Set) error {
	r := newReader(ctx, d, s.nextSeq, fs, s.logger)
	s.nextSeq++

	if err := r.open(ctx); err != nil {
		s.logger.Error().Err(err).Str("path", d.Path).Msg("readerset: reader failed")
		s.Failed = append(s.Failed, r)
		return err
	}
	if r.State == Ready {
		heap.Push(s, r)
	}
	return nil
}

// PrimeAll opens every descriptor in ds, bounding spec.md §5's "MAY
// parallelize reader priming" allowance with errgroup.Group: each
// descriptor primes independently before any is inserted, so insertion
// order — and therefore the tie-break — only depends on ds's order, never
// on goroutine completion order.
func (s *Set) PrimeAll(ctx context.Context, ds []descriptor.Descriptor, fs *filterset.Set) error {
	readers := make([]*Reader, len(ds))
	base := s.nextSeq
	s.nextSeq += uint64(len(ds))

	var g errgroup.Group
	for i, d := range ds {
		i, d := i, d
		readers[i] = newReader(ctx, d, base+uint64(i), fs, s.logger)
		g.Go(func() error {
			return readers[i].open(ctx)
		})
	}
	// errgroup.Wait returns the first non-nil error, but per-reader failures
	// are reader-scoped (spec.md §4.6) and must not abort siblings still
	// priming; open() already records Failed/err on the reader itself, so
	// we deliberately ignore the aggregate error here.
	_ = g.Wait()

	for _, r := range readers {
		switch r.State {
		case Ready:
			heap.Push(s, r)
		case Failed:
			s.logger.Error().Err(r.Err).Str("path", r.Descriptor.Path).Msg("readerset: reader failed")
			s.Failed = append(s.Failed, r)
		}
	}
	return nil
}

// PopNext delivers the globally-smallest head record and advances its
// reader, reinserting it if still Ready or dropping it on EOF/Failed.
func (s *Set) PopNext() (*record.Record, bool) {
	if len(s.ready) == 0 {
		return nil, false
	}

	r := s.ready[0]
	rec, err := r.advance()
	heap.Pop(s) // remove root; r's new key (if any) is reinserted below

	if err != nil {
		s.logger.Error().Err(err).Str("path", r.Descriptor.Path).Msg("readerset: reader failed mid-stream")
		s.Failed = append(s.Failed, r)
	} else if r.State == Ready {
		heap.Push(s, r)
	}

	return rec, rec != nil
}

// Close releases every open reader's file handle.
func (s *Set) Close() error {
	for _, r := range s.ready {
		r.Close()
	}
	s.ready = nil
	return nil
}
