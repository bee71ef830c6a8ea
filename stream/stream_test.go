package stream

import (
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
	"github.com/bgpfix/bgpstream/source/memcatalog"
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

func makeBGP4MPAS4Entry(ts uint32, peerAS uint32, peerIP netip.Addr, bgp []byte) []byte {
	payload := make([]byte, 0, 16+len(bgp))
	payload = appendU32(payload, peerAS)
	payload = appendU32(payload, 65000)
	payload = appendU16(payload, 0)
	payload = appendU16(payload, uint16(af.AFI_IPV4))
	payload = append(payload, peerIP.AsSlice()...)
	payload = append(payload, peerIP.AsSlice()...)
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

func TestCoordinatorEndToEndOverMemcatalog(t *testing.T) {
	peer := netip.MustParseAddr("192.0.2.1")
	path := writeArchive(t, "updates.mrt",
		makeBGP4MPAS4Entry(1000, 65001, peer, makeBgpKeepalive()),
		makeBGP4MPAS4Entry(2000, 65001, peer, makeBgpKeepalive()),
	)

	c := New()
	backend := memcatalog.New([]descriptor.Descriptor{
		{Path: path, Type: descriptor.Updates, Collector: "rrc00", FileTime: 500},
	})
	c.backend = backend // test-only injection of a preloaded fixture, bypassing the registry
	c.backendName = "mem"

	require.NoError(t, c.AddInterval(0, 5000)) // bounded: backend Empty must mean end-of-stream, not live-poll
	require.NoError(t, c.Start())
	defer c.Destroy()

	rec, status, err := c.NextRecord()
	require.NoError(t, err)
	require.Equal(t, StatusRecord, status)
	require.Equal(t, uint32(1000), rec.Timestamp)

	rec, status, err = c.NextRecord()
	require.NoError(t, err)
	require.Equal(t, StatusRecord, status)
	require.Equal(t, uint32(2000), rec.Timestamp)

	_, status, err = c.NextRecord()
	require.NoError(t, err)
	require.Equal(t, StatusEndOfStream, status)
}

func TestStartRejectsWithoutInterval(t *testing.T) {
	c := New()
	require.NoError(t, c.SetDataInterface("mem"))
	require.ErrorIs(t, c.Start(), filterset.ErrNoInterval)
}

func TestStartRejectsWithoutBackend(t *testing.T) {
	c := New()
	require.NoError(t, c.AddInterval(0, 100))
	require.ErrorIs(t, c.Start(), ErrUnknownBackend)
}

func TestWindowAdvancesPastServedDescriptors(t *testing.T) {
	c := New()
	require.NoError(t, c.AddInterval(50, 1000))
	c.advanceWindow([]descriptor.Descriptor{{FileTime: 300}})

	from, to := c.window()
	require.Equal(t, uint32(301), from)
	require.Equal(t, uint32(1000), to)
}
