package readerset

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zstd"
)

// openArchive opens path and wraps it in a transparent decompressor, the
// same convenience mrt.Reader.ReadFromPath offers, extended with zstd
// (klauspost/compress) and a mimetype sniff for extensionless dumps (a
// renamed or streamed-without-extension archive) that ReadFromPath's bare
// extension switch would otherwise pass through uncompressed.
func openArchive(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ext := filepath.Ext(path)
	if ext == "" {
		if mime, merr := mimetype.DetectFile(path); merr == nil {
			ext = mime.Extension()
		}
	}

	switch ext {
	case ".bz2":
		return &readCloser{Reader: bzip2.NewReader(fh), closer: fh}, nil
	case ".gz":
		gz, gerr := gzip.NewReader(fh)
		if gerr != nil {
			fh.Close()
			return nil, fmt.Errorf("%s: %w", path, gerr)
		}
		return &readCloser{Reader: gz, closer: multiCloser{gz, fh}}, nil
	case ".zst":
		zr, zerr := zstd.NewReader(fh)
		if zerr != nil {
			fh.Close()
			return nil, fmt.Errorf("%s: %w", path, zerr)
		}
		return &readCloser{Reader: zr, closer: zstdCloser{zr, fh}}, nil
	default:
		return fh, nil
	}
}

// readCloser pairs a decompressing io.Reader with the Close logic needed to
// release it and the underlying file handle.
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (rc *readCloser) Close() error {
	return rc.closer.Close()
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// zstdCloser adapts zstd.Decoder's Close (no error return) to io.Closer.
type zstdCloser struct {
	zr *zstd.Decoder
	fh *os.File
}

func (z zstdCloser) Close() error {
	z.zr.Close()
	return z.fh.Close()
}
