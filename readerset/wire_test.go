package readerset

import (
	"context"
	"encoding/binary"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/af"
	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/filterset"
	"github.com/bgpfix/bgpstream/msg"
	"github.com/bgpfix/bgpstream/mrt"
)

var bgpMarker = [16]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

func appendU16(dst []byte, v uint16) []byte { return binary.BigEndian.AppendUint16(dst, v) }
func appendU32(dst []byte, v uint32) []byte { return binary.BigEndian.AppendUint32(dst, v) }

func makeBgpKeepalive() []byte {
	buf := make([]byte, msg.HEADLEN)
	copy(buf, bgpMarker[:])
	buf[16] = byte(msg.HEADLEN >> 8)
	buf[17] = byte(msg.HEADLEN)
	buf[18] = byte(msg.KEEPALIVE)
	return buf
}

// makeBGP4MPAS4Entry builds one wire-encoded MRT BGP4MP_MESSAGE_AS4 entry
// (header + AS4 peer/local header + IPv4 peer/local addrs + BGP message).
func makeBGP4MPAS4Entry(ts uint32, peerAS uint32, peerIP netip.Addr, bgp []byte) []byte {
	payload := make([]byte, 0, 16+len(bgp))
	payload = appendU32(payload, peerAS) // peer AS
	payload = appendU32(payload, 65000)  // local AS
	payload = appendU16(payload, 0)      // interface
	payload = appendU16(payload, uint16(af.AFI_IPV4))
	payload = append(payload, peerIP.AsSlice()...)
	payload = append(payload, peerIP.AsSlice()...) // local IP, reuse peer for simplicity
	payload = append(payload, bgp...)

	hdr := make([]byte, 0, mrt.HEADLEN)
	hdr = appendU32(hdr, ts)
	hdr = appendU16(hdr, uint16(mrt.BGP4MP))
	hdr = appendU16(hdr, uint16(mrt.BGP4_MESSAGE_AS4))
	hdr = appendU32(hdr, uint32(len(payload)))

	return append(hdr, payload...)
}

func writeArchive(t *testing.T, name string, entries ...[]byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	var buf []byte
	for _, e := range entries {
		buf = append(buf, e...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestReaderYieldsRecordsInFileOrder(t *testing.T) {
	peer := netip.MustParseAddr("192.0.2.1")
	path := writeArchive(t, "updates.mrt",
		makeBGP4MPAS4Entry(200, 65001, peer, makeBgpKeepalive()),
		makeBGP4MPAS4Entry(100, 65001, peer, makeBgpKeepalive()),
	)

	s := New(nil)
	d := descriptor.Descriptor{Path: path, Type: descriptor.Updates, Collector: "rrc00"}
	require.NoError(t, s.Add(context.Background(), d, nil))

	first, ok := s.PopNext()
	require.True(t, ok)
	require.Equal(t, uint32(200), first.Timestamp) // file order, not time-sorted within one reader

	second, ok := s.PopNext()
	require.True(t, ok)
	require.Equal(t, uint32(100), second.Timestamp)

	_, ok = s.PopNext()
	require.False(t, ok)
}

func TestSetMergesTwoReadersByTimestamp(t *testing.T) {
	peer := netip.MustParseAddr("192.0.2.1")
	pathA := writeArchive(t, "a.mrt", makeBGP4MPAS4Entry(300, 65001, peer, makeBgpKeepalive()))
	pathB := writeArchive(t, "b.mrt", makeBGP4MPAS4Entry(100, 65002, peer, makeBgpKeepalive()))

	s := New(nil)
	require.NoError(t, s.Add(context.Background(),
		descriptor.Descriptor{Path: pathA, Type: descriptor.Updates, Collector: "rrc00"}, nil))
	require.NoError(t, s.Add(context.Background(),
		descriptor.Descriptor{Path: pathB, Type: descriptor.Updates, Collector: "rrc01"}, nil))

	first, ok := s.PopNext()
	require.True(t, ok)
	require.Equal(t, uint32(100), first.Timestamp)

	second, ok := s.PopNext()
	require.True(t, ok)
	require.Equal(t, uint32(300), second.Timestamp)
}

func TestFineMatchFiltersOutNonMatchingReader(t *testing.T) {
	peer := netip.MustParseAddr("192.0.2.1")
	path := writeArchive(t, "updates.mrt", makeBGP4MPAS4Entry(100, 65001, peer, makeBgpKeepalive()))

	fs := filterset.New()
	require.NoError(t, fs.AddInterval(0, filterset.Forever))
	require.NoError(t, fs.Add(filterset.KindPeerASN, "99999"))

	s := New(nil)
	require.NoError(t, s.Add(context.Background(),
		descriptor.Descriptor{Path: path, Type: descriptor.Updates, Collector: "rrc00"}, fs))

	_, ok := s.PopNext()
	require.False(t, ok)
}
