package memcatalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/source"
)

func TestBackendServesEachDescriptorOnce(t *testing.T) {
	ctx := context.Background()
	b := New([]descriptor.Descriptor{
		{Path: "a", Collector: "rrc00", FileTime: 200},
		{Path: "b", Collector: "rrc00", FileTime: 100},
	})
	require.NoError(t, b.Start(ctx))

	descs, status, err := b.Poll(ctx, nil, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, source.OK, status)
	require.Len(t, descs, 2)
	require.Equal(t, uint32(100), descs[0].FileTime) // sorted

	_, status, err = b.Poll(ctx, nil, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, source.Empty, status)
}

func TestBackendHonorsWindow(t *testing.T) {
	ctx := context.Background()
	b := New([]descriptor.Descriptor{
		{Path: "a", FileTime: 50},
		{Path: "b", FileTime: 500},
	})
	require.NoError(t, b.Start(ctx))

	descs, status, err := b.Poll(ctx, nil, 100, 1000)
	require.NoError(t, err)
	require.Equal(t, source.OK, status)
	require.Len(t, descs, 1)
	require.Equal(t, uint32(500), descs[0].FileTime)
}

func TestRegisteredAsMem(t *testing.T) {
	factory, ok := source.Registry["mem"]
	require.True(t, ok)
	require.NotNil(t, factory())
}
