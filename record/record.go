// Package record represents a single decoded BGP record, the value
// delivered one at a time by the stream coordinator to its caller.
package record

import (
	"math"
	"net/netip"

	"github.com/bgpfix/bgpstream/attrs"
	"github.com/bgpfix/bgpstream/caps"
	"github.com/bgpfix/bgpstream/mrt"
	"github.com/bgpfix/bgpstream/msg"
)

// Forever marks an open-ended time interval.
const Forever = uint32(math.MaxUint32)

// DumpType is the archive file kind a Record was read from.
type DumpType uint8

const (
	DumpUnknown DumpType = iota
	DumpRIB
	DumpUpdates
)

func (t DumpType) String() string {
	switch t {
	case DumpRIB:
		return "rib"
	case DumpUpdates:
		return "updates"
	default:
		return "unknown"
	}
}

// Position is where within a RIB dump a Record sits.
type Position uint8

const (
	PosDefault Position = iota // always used for DumpUpdates
	PosFirst
	PosMiddle
	PosLast
)

// Record is one emitted BGP record: a timestamped, sourced BGP message
// decoded into its constituent Elements.
type Record struct {
	Timestamp uint32 // POSIX seconds
	Collector string
	Project   string
	Type      DumpType
	Position  Position
	Elements  []Element
	Raw       []byte // original MRT bytes, for downstream re-encoding
}

// ElementType is the kind of change one Element describes.
type ElementType uint8

const (
	ElemRIB ElementType = iota
	ElemAnnounce
	ElemWithdraw
	ElemStateChange
)

func (t ElementType) String() string {
	switch t {
	case ElemRIB:
		return "rib"
	case ElemAnnounce:
		return "announce"
	case ElemWithdraw:
		return "withdraw"
	case ElemStateChange:
		return "state-change"
	default:
		return "unknown"
	}
}

// Element is one semantic entry within a Record: a prefix announcement,
// withdrawal, state change, or RIB entry.
type Element struct {
	Type        ElementType
	PeerIP      netip.Addr
	PeerASN     uint32
	Prefix      netip.Prefix // zero Prefix for ElemStateChange
	ASPath      []uint32
	Communities []uint32
	NextHop     netip.Addr
}

// FromMrt builds a Record from a decoded MRT BGP4MP(_ET) message.
// collector/project name the originating archive, since MRT itself carries
// neither. scratch is a caller-owned Msg reused across calls, the same way
// mrt.Reader reuses its own Mrt across Write calls; FromMrt resets it.
func FromMrt(m *mrt.Mrt, scratch *msg.Msg, collector, project string) (*Record, error) {
	b4 := &m.Bgp4
	r := &Record{
		Timestamp: uint32(m.Time.Unix()),
		Collector: collector,
		Project:   project,
		Type:      DumpUpdates,
		Position:  PosDefault,
	}

	scratch.Reset()
	if err := b4.ToMsg(scratch); err != nil {
		return nil, err
	}
	scratch.Update.AddPath = b4.AddPath()

	var cps caps.Caps
	if err := scratch.Parse(cps); err != nil {
		return nil, err
	}

	switch scratch.Type {
	case msg.UPDATE:
		r.Elements = elementsFromUpdate(&scratch.Update, b4.PeerIP, b4.PeerAS)
	case msg.KEEPALIVE, msg.NOTIFY:
		r.Elements = []Element{{Type: ElemStateChange, PeerIP: b4.PeerIP, PeerASN: b4.PeerAS}}
	}

	return r, nil
}

func elementsFromUpdate(u *msg.Update, peerIP netip.Addr, peerASN uint32) []Element {
	aspath, communities, nexthop := pathAttrs(&u.Attrs)

	els := make([]Element, 0, len(u.Reach)+len(u.Unreach))
	for i := range u.Reach {
		els = append(els, Element{
			Type:        ElemAnnounce,
			PeerIP:      peerIP,
			PeerASN:     peerASN,
			Prefix:      u.Reach[i].Prefix,
			ASPath:      aspath,
			Communities: communities,
			NextHop:     nexthop,
		})
	}
	for i := range u.Unreach {
		els = append(els, Element{
			Type:    ElemWithdraw,
			PeerIP:  peerIP,
			PeerASN: peerASN,
			Prefix:  u.Unreach[i].Prefix,
		})
	}
	return els
}

func pathAttrs(ats *attrs.Attrs) (aspath []uint32, communities []uint32, nexthop netip.Addr) {
	if at, ok := ats.Get(attrs.ATTR_ASPATH).(*attrs.Aspath); ok {
		for _, seg := range at.Segments {
			aspath = append(aspath, seg.List...)
		}
	}

	if at, ok := ats.Get(attrs.ATTR_COMMUNITY).(*attrs.Community); ok {
		for i := range at.ASN {
			communities = append(communities, uint32(at.ASN[i])<<16|uint32(at.Value[i]))
		}
	}

	if at, ok := ats.Get(attrs.ATTR_NEXTHOP).(*attrs.IP); ok {
		nexthop = at.Addr
	}

	return
}
