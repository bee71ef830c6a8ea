package inputqueue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/descriptor"
)

func d(ft uint32, typ descriptor.Type) descriptor.Descriptor {
	return descriptor.Descriptor{FileTime: ft, Type: typ}
}

func TestPushKeepsSortedOrder(t *testing.T) {
	q := New()
	q.Push(d(300, descriptor.Updates))
	q.Push(d(100, descriptor.Updates))
	q.Push(d(200, descriptor.RIB))

	require.Equal(t, 3, q.Len())
	got, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(100), got.FileTime)

	got, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(200), got.FileTime)

	got, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(300), got.FileTime)

	_, ok = q.Pop()
	require.False(t, ok)
}

func TestPushAllTieBreaksRIBBeforeUpdates(t *testing.T) {
	q := New()
	q.PushAll([]descriptor.Descriptor{
		d(100, descriptor.Updates),
		d(100, descriptor.RIB),
	})

	first, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, descriptor.RIB, first.Type)

	second, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, descriptor.Updates, second.Type)
}

func TestDrainEmptiesQueue(t *testing.T) {
	q := New()
	q.PushAll([]descriptor.Descriptor{d(1, descriptor.Updates), d(2, descriptor.Updates)})

	drained := q.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, 0, q.Len())
}
