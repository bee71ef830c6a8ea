// Package filterset holds the Filter Set: the user's selection predicates
// (time interval, collector, project, peer ASN, prefix, element type,
// RIB-dump period) and the coarse (per-file) / fine (per-record) match
// queries the stream coordinator drives the pipeline with.
package filterset

import (
	"net/netip"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cast"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/record"
)

// Kind names one predicate family accepted by Add.
type Kind uint8

const (
	KindCollector Kind = iota
	KindProject
	KindPeerASN
	KindPrefix
	KindElementType
)

// Forever marks an open-ended interval end, mirroring record.Forever.
const Forever = record.Forever

type interval struct {
	begin, end uint32
}

func (iv interval) overlaps(begin, end uint32) bool {
	return begin <= iv.end && end >= iv.begin
}

type prefixPredicate struct {
	prefix netip.Prefix
	exact  bool
}

// matches reports whether target is admitted by p. The default direction
// (per spec.md §4.1 and §9's Open Question resolution) is containment:
// target is admitted if it is more-specific-or-equal to p's prefix. Uses
// netip.Prefix.Overlaps plus a Bits() direction check, the same two-part
// test the teacher's filter/prefix.go prefixEval runs for its OP_GE case
// (ref.Overlaps(pfx.Prefix) gated on rb >= pb).
func (p prefixPredicate) matches(target netip.Prefix) bool {
	if p.exact {
		return target == p.prefix
	}
	return target.Bits() >= p.prefix.Bits() && p.prefix.Overlaps(target)
}

// Set is a bundle of optional predicates. The zero value (via New) matches
// everything except the time interval, which must be added before
// Validate succeeds.
type Set struct {
	frozen bool

	intervals []interval
	live      bool

	collectors map[string]struct{}
	projects   map[string]struct{}
	peerASN    map[uint32]struct{}
	elemTypes  map[record.ElementType]struct{}

	prefixes   []prefixPredicate
	prefixSeen map[uint64]struct{} // xxhash membership, dedupes repeated Add calls

	ribPeriod uint32            // 0 = disabled
	ribLast   map[string]uint32 // collector -> FileTime of last admitted RIB
}

// New returns an empty, unfrozen Set.
func New() *Set {
	return &Set{}
}

func (s *Set) checkMutable() error {
	if s.frozen {
		return ErrFrozen
	}
	return nil
}

// Add parses and stores one predicate. KindPrefix values accept an optional
// ":exact" suffix (admit only that exact prefix) or ":cover" suffix (the
// same containment test as no suffix: a record prefix is admitted if it is
// more-specific-or-equal to the filter prefix). No suffix admits a record
// prefix that is less specific than the filter prefix.
func (s *Set) Add(kind Kind, value string) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if value == "" {
		return ErrInvalidFilter
	}

	switch kind {
	case KindCollector:
		if s.collectors == nil {
			s.collectors = make(map[string]struct{})
		}
		s.collectors[value] = struct{}{}

	case KindProject:
		if s.projects == nil {
			s.projects = make(map[string]struct{})
		}
		s.projects[value] = struct{}{}

	case KindPeerASN:
		asn, err := cast.ToUint32E(value)
		if err != nil {
			return ErrInvalidFilter
		}
		if s.peerASN == nil {
			s.peerASN = make(map[uint32]struct{})
		}
		s.peerASN[asn] = struct{}{}

	case KindPrefix:
		raw := value
		exact := false
		if i := strings.LastIndexByte(raw, ':'); i >= 0 {
			switch raw[i+1:] {
			case "exact":
				exact = true
				raw = raw[:i]
			case "cover":
				exact = false
				raw = raw[:i]
			}
		}
		pfx, err := netip.ParsePrefix(raw)
		if err != nil {
			return ErrInvalidFilter
		}
		key := xxhash.Sum64String(pfx.String()) ^ boolHash(exact)
		if s.prefixSeen == nil {
			s.prefixSeen = make(map[uint64]struct{})
		}
		if _, dup := s.prefixSeen[key]; dup {
			return nil
		}
		s.prefixSeen[key] = struct{}{}
		s.prefixes = append(s.prefixes, prefixPredicate{prefix: pfx, exact: exact})

	case KindElementType:
		et, ok := parseElementType(value)
		if !ok {
			return ErrInvalidFilter
		}
		if s.elemTypes == nil {
			s.elemTypes = make(map[record.ElementType]struct{})
		}
		s.elemTypes[et] = struct{}{}

	default:
		return ErrInvalidFilter
	}

	return nil
}

func boolHash(b bool) uint64 {
	if b {
		return 0x9e3779b97f4a7c15
	}
	return 0
}

func parseElementType(value string) (record.ElementType, bool) {
	switch value {
	case "rib":
		return record.ElemRIB, true
	case "announce", "announcement":
		return record.ElemAnnounce, true
	case "withdraw", "withdrawal":
		return record.ElemWithdraw, true
	case "state-change", "state_change":
		return record.ElemStateChange, true
	default:
		return 0, false
	}
}

// AddInterval appends one time interval. end == Forever marks the
// coordinator's live-mode hint.
func (s *Set) AddInterval(begin, end uint32) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if begin > end {
		return ErrInvalidFilter
	}
	if end == Forever {
		s.live = true
	}
	s.intervals = append(s.intervals, interval{begin: begin, end: end})
	return nil
}

// AddRecent parses a duration specifier into an interval [now-spec, now],
// or [now-spec, Forever) if live.
func (s *Set) AddRecent(spec string, live bool) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	seconds, err := parseDuration(spec)
	if err != nil {
		return err
	}

	now := uint32(time.Now().Unix())
	begin := now - seconds
	if seconds > now {
		begin = 0
	}
	end := now
	if live {
		end = Forever
	}
	return s.AddInterval(begin, end)
}

// AddRIBPeriod sets the per-collector RIB dedup window: at most one RIB
// snapshot per collector is admitted every seconds.
func (s *Set) AddRIBPeriod(seconds uint32) error {
	if err := s.checkMutable(); err != nil {
		return err
	}
	if seconds == 0 {
		return ErrInvalidFilter
	}
	s.ribPeriod = seconds
	return nil
}

// Validate reports ErrNoInterval if no time interval was ever added.
func (s *Set) Validate() error {
	if len(s.intervals) == 0 {
		return ErrNoInterval
	}
	return nil
}

// Freeze rejects further mutation; Coordinator.Start calls this once.
func (s *Set) Freeze() {
	s.frozen = true
}

// Live reports whether any configured interval is open-ended.
func (s *Set) Live() bool {
	return s.live
}

// Bounds returns the union of every configured interval: the earliest
// begin and the latest end (Forever if any interval is open-ended). It is
// an advisory window hint for a source.Backend.Poll call, not an exact
// per-interval match — CoarseMatch re-checks precisely.
func (s *Set) Bounds() (begin, end uint32) {
	if len(s.intervals) == 0 {
		return 0, Forever
	}
	begin = s.intervals[0].begin
	end = s.intervals[0].end
	for _, iv := range s.intervals[1:] {
		if iv.begin < begin {
			begin = iv.begin
		}
		if end != Forever && (iv.end == Forever || iv.end > end) {
			end = iv.end
		}
	}
	return begin, end
}

// CoarseMatch reports whether d's file timestamp window overlaps some
// configured interval, collector/project predicates admit it, and, for RIB
// descriptors, the RIB-period filter admits this collector at this time.
//
// CoarseMatch has a side effect for RIB descriptors it admits: it commits
// the collector's last-admitted RIB FileTime, so callers MUST drive it in
// ascending FileTime order (the order inputqueue.Queue already yields) for
// the RIB-period dedup invariant (spec testable property 5) to hold.
func (s *Set) CoarseMatch(d descriptor.Descriptor) bool {
	dBegin := d.FileTime
	dEnd := d.FileTime
	if d.ScanTime > dEnd {
		dEnd = d.ScanTime
	}

	matched := len(s.intervals) == 0
	for _, iv := range s.intervals {
		if iv.overlaps(dBegin, dEnd) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	if len(s.collectors) > 0 {
		if _, ok := s.collectors[d.Collector]; !ok {
			return false
		}
	}
	if len(s.projects) > 0 {
		if _, ok := s.projects[d.Project]; !ok {
			return false
		}
	}

	if d.Type == descriptor.RIB && s.ribPeriod > 0 {
		if last, ok := s.ribLast[d.Collector]; ok && d.FileTime < last+s.ribPeriod {
			return false
		}
		if s.ribLast == nil {
			s.ribLast = make(map[string]uint32)
		}
		s.ribLast[d.Collector] = d.FileTime
	}

	return true
}

// FineMatch reports whether r's timestamp lies in a configured interval and
// its peer/prefix/element-type predicates admit it. Element-level
// predicates are record-level ORs: r matches if at least one Element
// satisfies every active predicate. State-change elements carry peer
// identity (so a peer-ASN filter still applies to them) but no prefix, so
// they vacuously satisfy a prefix predicate.
func (s *Set) FineMatch(r *record.Record) bool {
	inInterval := len(s.intervals) == 0
	for _, iv := range s.intervals {
		if iv.overlaps(r.Timestamp, r.Timestamp) {
			inInterval = true
			break
		}
	}
	if !inInterval {
		return false
	}

	if len(r.Elements) == 0 {
		return len(s.peerASN) == 0 && len(s.prefixes) == 0 && len(s.elemTypes) == 0
	}

	for i := range r.Elements {
		el := &r.Elements[i]

		if len(s.elemTypes) > 0 {
			if _, ok := s.elemTypes[el.Type]; !ok {
				continue
			}
		}

		if len(s.peerASN) > 0 {
			if _, ok := s.peerASN[el.PeerASN]; !ok {
				continue
			}
		}

		if len(s.prefixes) > 0 && el.Type != record.ElemStateChange {
			admitted := false
			for _, p := range s.prefixes {
				if p.matches(el.Prefix) {
					admitted = true
					break
				}
			}
			if !admitted {
				continue
			}
		}

		return true
	}

	return false
}
