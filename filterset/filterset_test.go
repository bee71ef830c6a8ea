package filterset

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/record"
)

func mustPrefix(s string) netip.Prefix {
	return netip.MustParsePrefix(s)
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		spec string
		want uint32
		ok   bool
	}{
		{"3600", 3600, true},
		{"1h", 3600, true},
		{"15m", 900, true},
		{"2d", 172800, true},
		{"1w", 604800, true},
		{"30s", 30, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, err := parseDuration(c.spec)
		if c.ok {
			require.NoError(t, err, c.spec)
			require.Equal(t, c.want, got, c.spec)
		} else {
			require.Error(t, err, c.spec)
		}
	}
}

func TestValidateRequiresInterval(t *testing.T) {
	s := New()
	require.ErrorIs(t, s.Validate(), ErrNoInterval)

	require.NoError(t, s.AddInterval(100, 200))
	require.NoError(t, s.Validate())
}

func TestFreezeRejectsMutation(t *testing.T) {
	s := New()
	require.NoError(t, s.AddInterval(0, 100))
	s.Freeze()

	require.ErrorIs(t, s.Add(KindCollector, "rrc00"), ErrFrozen)
	require.ErrorIs(t, s.AddInterval(0, 1), ErrFrozen)
}

func TestBoundsUnionsIntervals(t *testing.T) {
	s := New()
	require.NoError(t, s.AddInterval(100, 200))
	require.NoError(t, s.AddInterval(50, 150))
	begin, end := s.Bounds()
	require.Equal(t, uint32(50), begin)
	require.Equal(t, uint32(200), end)

	s2 := New()
	require.NoError(t, s2.AddInterval(100, Forever))
	_, end2 := s2.Bounds()
	require.Equal(t, Forever, end2)
}

func TestBoundsEmptySetIsUnbounded(t *testing.T) {
	s := New()
	begin, end := s.Bounds()
	require.Equal(t, uint32(0), begin)
	require.Equal(t, Forever, end)
}

func TestPrefixMatchDefaultsToContainment(t *testing.T) {
	s := New()
	require.NoError(t, s.AddInterval(0, Forever))
	require.NoError(t, s.Add(KindPrefix, "1.2.0.0/16"))

	rec := &record.Record{
		Timestamp: 1,
		Elements:  []record.Element{{Type: record.ElemAnnounce, Prefix: mustPrefix("1.2.3.0/24")}},
	}
	require.True(t, s.FineMatch(rec))

	outside := &record.Record{
		Timestamp: 1,
		Elements:  []record.Element{{Type: record.ElemAnnounce, Prefix: mustPrefix("9.9.9.0/24")}},
	}
	require.False(t, s.FineMatch(outside))
}

func TestPrefixMatchExactOverride(t *testing.T) {
	s := New()
	require.NoError(t, s.AddInterval(0, Forever))
	require.NoError(t, s.Add(KindPrefix, "1.2.0.0/16:exact"))

	exact := &record.Record{
		Timestamp: 1,
		Elements:  []record.Element{{Type: record.ElemAnnounce, Prefix: mustPrefix("1.2.0.0/16")}},
	}
	require.True(t, s.FineMatch(exact))

	moreSpecific := &record.Record{
		Timestamp: 1,
		Elements:  []record.Element{{Type: record.ElemAnnounce, Prefix: mustPrefix("1.2.3.0/24")}},
	}
	require.False(t, s.FineMatch(moreSpecific))
}

func TestCoarseMatchRIBPeriodDedup(t *testing.T) {
	s := New()
	require.NoError(t, s.AddInterval(0, Forever))
	require.NoError(t, s.AddRIBPeriod(3600))

	first := descriptor.Descriptor{Collector: "rrc00", Type: descriptor.RIB, FileTime: 1000}
	require.True(t, s.CoarseMatch(first))

	tooSoon := descriptor.Descriptor{Collector: "rrc00", Type: descriptor.RIB, FileTime: 1500}
	require.False(t, s.CoarseMatch(tooSoon))

	later := descriptor.Descriptor{Collector: "rrc00", Type: descriptor.RIB, FileTime: 5000}
	require.True(t, s.CoarseMatch(later))
}

func TestCoarseMatchCollectorFilter(t *testing.T) {
	s := New()
	require.NoError(t, s.AddInterval(0, Forever))
	require.NoError(t, s.Add(KindCollector, "rrc00"))

	ok := descriptor.Descriptor{Collector: "rrc00", FileTime: 10}
	require.True(t, s.CoarseMatch(ok))

	no := descriptor.Descriptor{Collector: "rrc01", FileTime: 10}
	require.False(t, s.CoarseMatch(no))
}
