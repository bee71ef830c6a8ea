package readerset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/mrt"
	"github.com/bgpfix/bgpstream/msg"
	"github.com/bgpfix/bgpstream/record"
)

// State is a Reader's position in its lifecycle.
type State uint8

const (
	Opening State = iota
	Ready
	EOF
	Failed
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Ready:
		return "ready"
	case EOF:
		return "eof"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reader is a cursor over one archive file's decoded, filtered records.
type Reader struct {
	Descriptor descriptor.Descriptor
	State      State
	Err        error // set when State == Failed

	seq uint64 // stable insertion sequence, tie-break

	logger  *zerolog.Logger
	filters *filterset.Set

	src     io.ReadCloser
	br      *mrt.Reader
	scratch *msg.Msg
	buf     [64 * 1024]byte

	matched *record.Record // set by onMrt, consumed by fetchOne

	head *record.Record // primed, not-yet-delivered record
	next *record.Record  // one-record lookahead
}

func newReader(ctx context.Context, d descriptor.Descriptor, seq uint64, fs *filterset.Set, logger *zerolog.Logger) *Reader {
	r := &Reader{
		Descriptor: d,
		State:      Opening,
		seq:        seq,
		logger:     logger,
		filters:    fs,
		scratch:    msg.NewMsg(),
	}
	r.br = mrt.NewReader(ctx, &mrt.ReaderOptions{
		Logger: logger,
		OnMrt:  r.onMrt,
	})
	return r
}

func (r *Reader) onMrt(m *mrt.Mrt) error {
	rec, err := record.FromMrt(m, r.scratch, r.Descriptor.Collector, r.Descriptor.Project)
	if err != nil {
		return fmt.Errorf("%s: %w", r.Descriptor.Path, err)
	}
	rec.Type = descriptorRecordType(r.Descriptor.Type)
	var raw bytes.Buffer
	if _, err := m.WriteTo(&raw); err != nil {
		return fmt.Errorf("%s: %w", r.Descriptor.Path, err)
	}
	rec.Raw = raw.Bytes()

	if r.filters != nil && !r.filters.FineMatch(rec) {
		return nil // keep scanning
	}

	r.matched = rec
	return errFoundMatch
}

func descriptorRecordType(t descriptor.Type) record.DumpType {
	if t == descriptor.RIB {
		return record.DumpRIB
	}
	return record.DumpUpdates
}

// open opens the archive and primes head and the one-record lookahead.
func (r *Reader) open(ctx context.Context) error {
	src, err := openArchive(r.Descriptor.Path)
	if err != nil {
		r.State = Failed
		r.Err = err
		return err
	}
	r.src = src

	head, err := r.fetchOne()
	if err != nil && !errors.Is(err, io.EOF) {
		r.src.Close()
		r.State = Failed
		r.Err = err
		return err
	}
	if head == nil {
		r.State = EOF
		r.src.Close()
		return nil
	}

	next, err := r.fetchOne()
	if err != nil && !errors.Is(err, io.EOF) {
		r.src.Close()
		r.State = Failed
		r.Err = err
		return err
	}

	r.head = head
	r.next = next
	r.tagPosition(r.head, true)
	r.State = Ready
	return nil
}

// tagPosition assigns rec.Position for RIB descriptors; first reports
// whether rec is the very first record admitted from this archive.
func (r *Reader) tagPosition(rec *record.Record, first bool) {
	if r.Descriptor.Type != descriptor.RIB {
		rec.Position = record.PosDefault
		return
	}
	switch {
	case first && r.next == nil:
		rec.Position = record.PosLast // only record in the file
	case first:
		rec.Position = record.PosFirst
	case r.next == nil:
		rec.Position = record.PosLast
	default:
		rec.Position = record.PosMiddle
	}
}

// advance delivers the current head, promotes the lookahead to head, and
// refills the lookahead. Call only while State == Ready.
func (r *Reader) advance() (*record.Record, error) {
	delivered := r.head

	r.head = r.next
	if r.head == nil {
		r.State = EOF
		r.src.Close()
		return delivered, nil
	}

	next, err := r.fetchOne()
	if err != nil && !errors.Is(err, io.EOF) {
		r.State = Failed
		r.Err = err
		r.src.Close()
		return delivered, err
	}
	r.next = next
	r.tagPosition(r.head, false)

	return delivered, nil
}

// fetchOne reads archive bytes until one admitted record is found, or the
// archive is exhausted (io.EOF), or a real I/O/decode error occurs.
func (r *Reader) fetchOne() (*record.Record, error) {
	for {
		n, rerr := r.src.Read(r.buf[:])
		if n > 0 {
			if rec, done, err := r.feed(r.buf[:n]); done {
				return rec, err
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				// src is exhausted, but br.Write only ever stops early at
				// the first match within a chunk — any further complete
				// messages already sitting in its carry-over buffer are
				// still unprocessed. Feed it nil so it keeps parsing that
				// buffer; repeated calls across later fetchOne invocations
				// (each hitting this same branch) drain it one match at a
				// time until neither a match nor a full message remains.
				rec, done, err := r.feed(nil)
				if err != nil {
					return nil, err
				}
				if done {
					return rec, nil
				}
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%s: %w", r.Descriptor.Path, rerr)
		}
	}
}

// feed writes p to br and reports whether it produced an admitted record
// (done=true, rec set) or a real error (err != nil). done=false, err=nil
// means br consumed p without finding a match and scanning should continue.
func (r *Reader) feed(p []byte) (rec *record.Record, done bool, err error) {
	if _, werr := r.br.Write(p); werr != nil {
		if errors.Is(werr, errFoundMatch) {
			rec := r.matched
			r.matched = nil
			return rec, true, nil
		}
		return nil, true, fmt.Errorf("%s: %w", r.Descriptor.Path, werr)
	}
	return nil, false, nil
}

// Close releases r's archive handle, idempotent.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	err := r.src.Close()
	r.src = nil
	return err
}
