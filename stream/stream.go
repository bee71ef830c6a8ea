// Package stream holds the Stream Coordinator: the top-level orchestrator
// exposed to callers. It holds the lifecycle state machine, owns the
// Filter Set, Data Interface, Input Queue and Reader Set, and implements
// NextRecord, the pull-based pump loop that refills downstream stages only
// when upstream is drained.
package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/inputqueue"
	"github.com/bgpfix/bgpstream/readerset"
	"github.com/bgpfix/bgpstream/record"
	"github.com/bgpfix/bgpstream/source"
)

// State is the Coordinator's lifecycle position.
type State uint8

const (
	Allocated State = iota
	On
	Off
)

func (s State) String() string {
	switch s {
	case Allocated:
		return "allocated"
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unknown"
	}
}

// Status is NextRecord's three-valued result, replacing the 0/negative
// convention a C-shaped API would use.
type Status uint8

const (
	StatusRecord Status = iota
	StatusEndOfStream
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusRecord:
		return "record"
	case StatusEndOfStream:
		return "end-of-stream"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

const defaultMaxFailures = 3

// Option configures a Coordinator at construction.
type Option func(*Coordinator)

// WithLogger sets the Coordinator's logger, which is also passed to its
// Reader Set. The data-interface backend is not given it.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMaxBackendFailures overrides the default 3 consecutive backend ERROR
// polls before NextRecord surfaces ErrBackendFatal (spec.md §4.6).
func WithMaxBackendFailures(n int) Option {
	return func(c *Coordinator) { c.maxFailures = n }
}

// Coordinator is the top-level orchestrator. All mutable state lives here;
// a caller wanting parallel streams instantiates multiple Coordinators.
type Coordinator struct {
	logger *zerolog.Logger
	state  State

	filters     *filterset.Set
	backendName string
	backend     source.Backend
	queue       *inputqueue.Queue
	readers     *readerset.Set

	live        bool
	bo          backoff.BackOff
	failCount   int
	maxFailures int

	windowFrom uint32 // advancing lower bound, past the latest descriptor served

	t tomb.Tomb
}

// New allocates a Coordinator; state = Allocated.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		state:       Allocated,
		filters:     filterset.New(),
		queue:       inputqueue.New(),
		maxFailures: defaultMaxFailures,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		l := zerolog.Nop()
		c.logger = &l
	}
	c.readers = readerset.New(c.logger)
	return c
}

func (c *Coordinator) checkAllocated() error {
	if c.state != Allocated {
		return ErrInvalidState
	}
	return nil
}

// AddFilter delegates to the Filter Set; rejected once state != Allocated.
func (c *Coordinator) AddFilter(kind filterset.Kind, value string) error {
	if err := c.checkAllocated(); err != nil {
		return err
	}
	return c.filters.Add(kind, value)
}

// AddInterval appends one time interval.
func (c *Coordinator) AddInterval(begin, end uint32) error {
	if err := c.checkAllocated(); err != nil {
		return err
	}
	if err := c.filters.AddInterval(begin, end); err != nil {
		return err
	}
	if end == filterset.Forever {
		c.live = true
	}
	return nil
}

// AddRecentInterval parses a duration specifier into [now-spec, now] (or
// [now-spec, Forever) in live mode) and adds it as an interval.
func (c *Coordinator) AddRecentInterval(spec string) error {
	if err := c.checkAllocated(); err != nil {
		return err
	}
	return c.filters.AddRecent(spec, c.live)
}

// AddRIBPeriodFilter sets the per-collector RIB dedup window.
func (c *Coordinator) AddRIBPeriodFilter(seconds uint32) error {
	if err := c.checkAllocated(); err != nil {
		return err
	}
	return c.filters.AddRIBPeriod(seconds)
}

// SetDataInterface selects a backend by its source.Registry name.
func (c *Coordinator) SetDataInterface(name string) error {
	if err := c.checkAllocated(); err != nil {
		return err
	}
	factory, ok := source.Registry[name]
	if !ok {
		return ErrUnknownBackend
	}
	c.backendName = name
	c.backend = factory()
	return nil
}

// SetDataInterfaceOption configures the selected backend.
func (c *Coordinator) SetDataInterfaceOption(name, value string) error {
	if err := c.checkAllocated(); err != nil {
		return err
	}
	if c.backend == nil {
		return ErrUnknownBackend
	}
	return c.backend.Configure(name, value)
}

// SetLiveMode sets the blocking/live flag.
func (c *Coordinator) SetLiveMode() {
	c.live = true
}

// Start validates filters, starts the backend, and transitions to On. A
// failure here leaves state at Allocated, per spec.md's state diagram.
func (c *Coordinator) Start() error {
	if err := c.checkAllocated(); err != nil {
		return err
	}
	if err := c.filters.Validate(); err != nil {
		return err
	}
	if c.backend == nil {
		return ErrUnknownBackend
	}

	if err := c.backend.Start(context.Background()); err != nil {
		return fmt.Errorf("%s: %w", c.backendName, err)
	}

	c.filters.Freeze()
	c.bo = newBackoff()
	c.state = On
	return nil
}

// newBackoff returns the exponential-with-cap policy spec.md §4.4/§9
// requires: 30s initial, doubling, capped at 1h. Randomization is disabled
// so the sequence is deterministic and testable (spec.md S5 expects exactly
// [30, 60, 120]).
func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 30 * time.Second
	b.Multiplier = 2
	b.MaxInterval = time.Hour
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// NextRecord runs the refill/merge loop until one record is emitted, the
// stream is definitively exhausted, or an error/interrupt occurs.
func (c *Coordinator) NextRecord() (*record.Record, Status, error) {
	if c.state != On {
		return nil, StatusError, ErrInvalidState
	}

	ctx := context.Background()
	for {
		select {
		case <-c.t.Dying():
			return nil, StatusError, ErrInterrupted
		default:
		}

		// 1. drain the ready set
		if c.readers.Len() > 0 {
			if rec, ok := c.readers.PopNext(); ok {
				return rec, StatusRecord, nil
			}
		}

		// 2. refill: poll the backend for the current window
		from, to := c.window()
		descs, status, perr := c.backend.Poll(ctx, c.filters, from, to)

		switch status {
		case source.OK:
			c.failCount = 0
			c.bo.Reset()
			c.advanceWindow(descs)
			c.queue.PushAll(descs)
			pending := c.queue.Drain()
			_ = c.readers.PrimeAll(ctx, pending, c.filters) // per-reader errors are reader-scoped
			continue

		case source.Empty:
			if !c.live {
				return nil, StatusEndOfStream, nil
			}
			if err := c.sleepBackoff(); err != nil {
				return nil, StatusError, err
			}
			continue

		case source.Error:
			c.failCount++
			if c.failCount >= c.maxFailures {
				return nil, StatusError, fmt.Errorf("%w: %v", ErrBackendFatal, perr)
			}
			c.logger.Warn().Err(perr).Int("fail_count", c.failCount).Msg("stream: backend poll error, backing off")
			if err := c.sleepBackoff(); err != nil {
				return nil, StatusError, err
			}
			continue

		default:
			return nil, StatusError, fmt.Errorf("stream: unknown backend status %d", status)
		}
	}
}

func (c *Coordinator) sleepBackoff() error {
	d := c.bo.NextBackOff()
	if d == backoff.Stop {
		d = c.bo.(*backoff.ExponentialBackOff).MaxInterval
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-c.t.Dying():
		return ErrInterrupted
	}
}

func (c *Coordinator) window() (from, to uint32) {
	boundBegin, boundEnd := c.filters.Bounds()

	from = boundBegin
	if c.windowFrom > from {
		from = c.windowFrom
	}

	to = boundEnd
	if c.live && to == filterset.Forever {
		to = uint32(time.Now().Unix())
	}

	return from, to
}

// advanceWindow narrows the window's lower bound past the latest
// descriptor timestamp served, so bounded-window backends (sqlcatalog)
// don't re-enumerate the same rows on the next poll.
func (c *Coordinator) advanceWindow(descs []descriptor.Descriptor) {
	for _, d := range descs {
		if d.FileTime+1 > c.windowFrom {
			c.windowFrom = d.FileTime + 1
		}
	}
}

// Destroy kills the cooperative interrupt, releases readers and the
// backend in reverse construction order, and transitions to Off.
func (c *Coordinator) Destroy() error {
	if c.state == Off {
		return nil
	}
	c.t.Kill(nil)

	var firstErr error
	if err := c.readers.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if c.backend != nil {
		if err := c.backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.state = Off
	return firstErr
}
