package mrt

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Reader frames a byte stream into individual MRT messages and demultiplexes
// BGP4MP / BGP4MP_ET ones, handing each off to Options.OnMrt. It does not
// decode the embedded BGP message itself; that is the job of whatever reads
// mrt.Bgp4.MsgData (see the readerset package).
type Reader struct {
	*zerolog.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc

	Stats   ReaderStats   // our stats
	Options ReaderOptions // options, copied from NewReader's argument

	ibuf []byte // input buffer
	mrt  Mrt    // raw MRT message, reused across calls
}

// MRT reader statistics
type ReaderStats struct {
	Parsed     uint64 // parsed messages (total)
	ParsedBgp  uint64 // parsed BGP4MP messages
	ParsedSkip uint64 // skipped non-BGP4MP messages
	Short      uint64 // data in buffer too short, should retry
	Garbled    uint64 // parse error
}

// NewReader returns a new Reader using opts, or DefaultReaderOptions if nil.
func NewReader(ctx context.Context, opts *ReaderOptions) *Reader {
	br := &Reader{}
	br.ctx, br.cancel = context.WithCancelCause(ctx)
	if opts != nil {
		br.Options = *opts
	} else {
		br.Options = DefaultReaderOptions
	}
	br.mrt.Bgp4.Init(&br.mrt)

	if br.Options.Logger != nil {
		br.Logger = br.Options.Logger
	} else {
		l := zerolog.Nop()
		br.Logger = &l
	}

	return br
}

// Close cancels br's context, unblocking any goroutine waiting on it.
func (br *Reader) Close(cause error) {
	br.cancel(cause)
}

// Write implements io.Writer and frames all MRT messages found in src,
// calling Options.OnMrt for each one that demultiplexes to BGP4MP(_ET).
// Must not be used concurrently.
func (br *Reader) Write(src []byte) (n int, err error) {
	var (
		mrt   = &br.mrt
		stats = &br.Stats
	)

	// context check
	if br.ctx.Err() != nil {
		return 0, context.Cause(br.ctx)
	}

	// append src and switch to inbuf if needed
	n = len(src) // NB: always return n=len(src)
	raw := src
	if len(br.ibuf) > 0 {
		br.ibuf = append(br.ibuf, src...)
		raw = br.ibuf // [1]
	}

	// on return, leave remainder at start of br.ibuf?
	defer func() {
		if len(raw) == 0 {
			br.ibuf = br.ibuf[:0]
		} else if len(br.ibuf) == 0 || &raw[0] != &br.ibuf[0] { // NB: trick to avoid self-copy [1]
			br.ibuf = append(br.ibuf[:0], raw...)
		} // otherwise there is something left, but already @ br.ibuf[0:]
	}()

	// process until raw is empty
	for len(raw) > 0 {
		off, perr := mrt.Reset().FromBytes(raw)
		switch perr {
		case nil:
			stats.Parsed++
			raw = raw[off:]
		case io.ErrUnexpectedEOF: // need more data
			stats.Short++
			return n, nil // defer will buffer raw
		default: // parse error, can't recover position, throw out the rest
			stats.Garbled++
			raw = nil
			return n, fmt.Errorf("MRT: %w", perr)
		}

		// only interested in BGP4MP(_ET)
		if !mrt.Type.IsBGP4() {
			stats.ParsedSkip++
			continue
		}

		if perr = mrt.Parse(); perr != nil {
			stats.Garbled++
			if br.Logger != nil {
				br.Logger.Debug().Err(perr).Msg("mrt: dropping garbled BGP4MP message")
			}
			continue
		}
		stats.ParsedBgp++

		if br.Options.OnMrt != nil {
			if err := br.Options.OnMrt(mrt); err != nil {
				return n, err
			}
		}
	}

	// exactly n bytes consumed and processed, no error
	return n, nil
}

// ReadFromPath opens and reads fpath into br, uncompressing if needed.
func (br *Reader) ReadFromPath(fpath string) (n int64, err error) {
	fh, err := os.Open(fpath)
	if err != nil {
		return 0, err
	}
	defer fh.Close()

	// transparent uncompress?
	var rd io.Reader
	switch filepath.Ext(fpath) {
	case ".bz2":
		rd = bzip2.NewReader(fh)
	case ".gz":
		rd, err = gzip.NewReader(fh)
		if err != nil {
			return 0, err
		}
	default:
		rd = fh
	}

	// copy all from MRT to br, in 10MiB steps
	buf := make([]byte, 10*1024*1024)
	return io.CopyBuffer(br, rd, buf)
}
