package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLessOrdersByFileTimeThenType(t *testing.T) {
	a := Descriptor{FileTime: 100, Type: Updates}
	b := Descriptor{FileTime: 200, Type: RIB}
	require.True(t, Less(a, b))
	require.False(t, Less(b, a))

	rib := Descriptor{FileTime: 100, Type: RIB}
	upd := Descriptor{FileTime: 100, Type: Updates}
	require.True(t, Less(rib, upd))
	require.False(t, Less(upd, rib))
}

func TestIdentityIgnoresPathAndSize(t *testing.T) {
	a := Descriptor{Path: "/a/rib.1", Collector: "rrc00", Type: RIB, FileTime: 100, Size: 10}
	b := Descriptor{Path: "/b/rib.1", Collector: "rrc00", Type: RIB, FileTime: 100, Size: 999}
	require.Equal(t, a.Identity(), b.Identity())

	c := Descriptor{Path: "/a/rib.1", Collector: "rrc01", Type: RIB, FileTime: 100}
	require.NotEqual(t, a.Identity(), c.Identity())
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "rib", RIB.String())
	require.Equal(t, "updates", Updates.String())
}
