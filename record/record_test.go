package record

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/attrs"
	"github.com/bgpfix/bgpstream/mrt"
	"github.com/bgpfix/bgpstream/msg"
	"github.com/bgpfix/bgpstream/nlri"
)

var bgpMarker = [16]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

func makeBgpKeepalive() []byte {
	buf := make([]byte, msg.HEADLEN)
	copy(buf, bgpMarker[:])
	buf[16] = byte(msg.HEADLEN >> 8)
	buf[17] = byte(msg.HEADLEN)
	buf[18] = byte(msg.KEEPALIVE)
	return buf
}

func TestFromMrtKeepaliveIsStateChange(t *testing.T) {
	m := &mrt.Mrt{
		Time: time.Unix(1700000000, 0),
		Type: mrt.BGP4MP,
		Sub:  mrt.BGP4_MESSAGE_AS4,
	}
	m.Bgp4.Init(m)
	m.Bgp4.PeerAS = 65001
	m.Bgp4.PeerIP = netip.MustParseAddr("192.0.2.1")
	m.Bgp4.MsgData = makeBgpKeepalive()

	scratch := msg.NewMsg()
	rec, err := FromMrt(m, scratch, "rrc00", "ris")
	require.NoError(t, err)

	require.Equal(t, uint32(1700000000), rec.Timestamp)
	require.Equal(t, "rrc00", rec.Collector)
	require.Equal(t, "ris", rec.Project)
	require.Len(t, rec.Elements, 1)
	require.Equal(t, ElemStateChange, rec.Elements[0].Type)
	require.Equal(t, uint32(65001), rec.Elements[0].PeerASN)
	require.Equal(t, netip.MustParseAddr("192.0.2.1"), rec.Elements[0].PeerIP)
}

func TestFromMrtRejectsBadMsgData(t *testing.T) {
	m := &mrt.Mrt{Time: time.Unix(1, 0), Type: mrt.BGP4MP, Sub: mrt.BGP4_MESSAGE_AS4}
	m.Bgp4.Init(m)
	m.Bgp4.MsgData = []byte{0x01, 0x02}

	scratch := msg.NewMsg()
	_, err := FromMrt(m, scratch, "c", "p")
	require.Error(t, err)
}

func TestElementsFromUpdateCarriesPeerAndAttrs(t *testing.T) {
	var ats attrs.Attrs
	ats.Set(attrs.ATTR_ASPATH, &attrs.Aspath{
		Segments: []attrs.AspathSegment{{List: []uint32{65001, 65002}}},
	})
	ats.Set(attrs.ATTR_COMMUNITY, &attrs.Community{ASN: []uint16{65001}, Value: []uint16{100}})
	ats.Set(attrs.ATTR_NEXTHOP, &attrs.IP{Addr: netip.MustParseAddr("192.0.2.1")})

	u := &msg.Update{
		Attrs: ats,
		Reach: []nlri.NLRI{
			{Prefix: netip.MustParsePrefix("198.51.100.0/24")},
		},
		Unreach: []nlri.NLRI{
			{Prefix: netip.MustParsePrefix("203.0.113.0/24")},
		},
	}

	peerIP := netip.MustParseAddr("192.0.2.254")
	els := elementsFromUpdate(u, peerIP, 65055)
	require.Len(t, els, 2)

	require.Equal(t, ElemAnnounce, els[0].Type)
	require.Equal(t, peerIP, els[0].PeerIP)
	require.Equal(t, uint32(65055), els[0].PeerASN)
	require.Equal(t, netip.MustParsePrefix("198.51.100.0/24"), els[0].Prefix)
	require.Equal(t, []uint32{65001, 65002}, els[0].ASPath)
	require.Equal(t, []uint32{uint32(65001)<<16 | 100}, els[0].Communities)
	require.Equal(t, netip.MustParseAddr("192.0.2.1"), els[0].NextHop)

	require.Equal(t, ElemWithdraw, els[1].Type)
	require.Equal(t, peerIP, els[1].PeerIP)
	require.Equal(t, netip.MustParsePrefix("203.0.113.0/24"), els[1].Prefix)
}

func TestPathAttrsMissingAttrsReturnsZeroValues(t *testing.T) {
	var ats attrs.Attrs
	aspath, communities, nexthop := pathAttrs(&ats)
	require.Nil(t, aspath)
	require.Nil(t, communities)
	require.False(t, nexthop.IsValid())
}
