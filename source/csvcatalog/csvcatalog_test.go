package csvcatalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/descriptor"
	"github.com/bgpfix/bgpstream/source"
)

func writeCSV(t *testing.T, rows string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o644))
	return path
}

func TestStartParsesAndSortsRows(t *testing.T) {
	path := writeCSV(t, "updates/2.mrt,updates,rrc00,ris,200,200\nrib/1.mrt,rib,rrc00,ris,100,100\n")

	b := New()
	require.NoError(t, b.Configure("csv-file", path))
	require.NoError(t, b.Start(context.Background()))

	require.Len(t, b.rows, 2)
	require.Equal(t, uint32(100), b.rows[0].FileTime)
	require.Equal(t, descriptor.RIB, b.rows[0].Type)
}

func TestPollServesEachRowOnce(t *testing.T) {
	path := writeCSV(t, "a.mrt,updates,rrc00,ris,100,100\n")

	b := New()
	require.NoError(t, b.Configure("csv-file", path))
	require.NoError(t, b.Start(context.Background()))

	descs, status, err := b.Poll(context.Background(), nil, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, source.OK, status)
	require.Len(t, descs, 1)

	_, status, err = b.Poll(context.Background(), nil, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, source.Empty, status)
}

func TestStartRequiresCsvFile(t *testing.T) {
	b := New()
	require.ErrorIs(t, b.Start(context.Background()), source.ErrBackendStart)
}

func TestConfigureRejectsUnknownOption(t *testing.T) {
	b := New()
	require.ErrorIs(t, b.Configure("bogus", "x"), source.ErrUnknownOption)
}
