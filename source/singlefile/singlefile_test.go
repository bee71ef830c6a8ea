package singlefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/source"
)

func TestPollServesRibThenUpdatesOnceEach(t *testing.T) {
	dir := t.TempDir()
	ribPath := filepath.Join(dir, "rib.mrt")
	updPath := filepath.Join(dir, "updates.mrt")
	require.NoError(t, os.WriteFile(ribPath, []byte("rib"), 0o644))
	require.NoError(t, os.WriteFile(updPath, []byte("upd"), 0o644))

	b := New()
	require.NoError(t, b.Configure("rib-file", ribPath))
	require.NoError(t, b.Configure("upd-file", updPath))
	require.NoError(t, b.Start(context.Background()))
	defer b.Close()

	descs, status, err := b.Poll(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	require.Equal(t, source.OK, status)
	require.Len(t, descs, 2)
	require.Equal(t, descriptor.RIB, descs[0].Type)
	require.Equal(t, descriptor.Updates, descs[1].Type)

	_, status, err = b.Poll(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	require.Equal(t, source.Empty, status)
}

func TestStartRequiresAtLeastOneFile(t *testing.T) {
	b := New()
	require.ErrorIs(t, b.Start(context.Background()), source.ErrBackendStart)
}
