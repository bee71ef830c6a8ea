// Package singlefile is the reference single-file Data Interface backend:
// one RIB path and/or one UPDATES path given as options.
package singlefile

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/source"
)

func init() {
	source.Register("singlefile", func() source.Backend { return New() })
}

// Backend serves at most one RIB descriptor and one UPDATES descriptor,
// each exactly once, then Empty forever. When the filter set is live, an
// Empty Poll first waits in waitForGrowth (unless watching upd-file's
// directory failed at Start); the coordinator still applies its own backoff
// after that Empty, and data appended to upd-file after it was served is
// not read. Poll does not call filterset.Set.CoarseMatch: its descriptors
// carry FileTime 0 and are served whatever the interval, collector and
// project predicates say.
type Backend struct {
	ribFile  string
	updFile  string
	dumpPath string

	ribServed bool
	updServed bool

	watcher     *fsnotify.Watcher
	maxWait     time.Duration
	collector   string
	project     string
	ribFileTime uint32
	updFileTime uint32

	logger *zerolog.Logger
}

// New returns an unconfigured Backend.
func New() *Backend {
	return &Backend{maxWait: 30 * time.Second, logger: &log.Logger}
}

// SetLogger overrides the default global zerolog logger.
func (b *Backend) SetLogger(l *zerolog.Logger) {
	b.logger = l
}

func (b *Backend) Configure(option, value string) error {
	switch option {
	case "rib-file":
		b.ribFile = value
	case "upd-file":
		b.updFile = value
	case "dump-path":
		b.dumpPath = value
	case "collector":
		b.collector = value
	case "project":
		b.project = value
	default:
		return source.ErrUnknownOption
	}
	return nil
}

func (b *Backend) resolve(path string) string {
	if path == "" || b.dumpPath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.dumpPath, path)
}

func (b *Backend) Start(ctx context.Context) error {
	if b.ribFile == "" && b.updFile == "" {
		return source.ErrBackendStart
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	b.watcher = w

	if b.updFile != "" {
		if err := w.Add(filepath.Dir(b.resolve(b.updFile))); err != nil {
			if b.logger != nil {
				b.logger.Warn().Err(err).Str("upd-file", b.updFile).
					Msg("singlefile: could not watch upd-file directory, live mode falls back to backoff polling")
			}
			w.Close()
			b.watcher = nil
		}
	}

	return nil
}

func (b *Backend) Poll(ctx context.Context, fs *filterset.Set, from, to uint32) ([]descriptor.Descriptor, source.Status, error) {
	var out []descriptor.Descriptor

	if b.ribFile != "" && !b.ribServed {
		b.ribServed = true
		out = append(out, descriptor.Descriptor{
			Path:      b.resolve(b.ribFile),
			Type:      descriptor.RIB,
			Collector: b.collector,
			Project:   b.project,
			FileTime:  b.ribFileTime,
		})
	}

	if b.updFile != "" && !b.updServed {
		b.updServed = true
		out = append(out, descriptor.Descriptor{
			Path:      b.resolve(b.updFile),
			Type:      descriptor.Updates,
			Collector: b.collector,
			Project:   b.project,
			FileTime:  b.updFileTime,
		})
	}

	if len(out) > 0 {
		return out, source.OK, nil
	}

	if fs != nil && fs.Live() && b.watcher != nil {
		b.waitForGrowth(ctx)
	}

	return nil, source.Empty, nil
}

// waitForGrowth blocks until the watcher reports an event or an error for
// anything in upd-file's directory, ctx is cancelled, or maxWait elapses,
// whichever comes first.
func (b *Backend) waitForGrowth(ctx context.Context) {
	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-b.watcher.Events:
	case <-b.watcher.Errors:
	}
}

func (b *Backend) Close() error {
	if b.watcher != nil {
		err := b.watcher.Close()
		b.watcher = nil
		return err
	}
	return nil
}
