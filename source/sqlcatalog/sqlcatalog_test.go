package sqlcatalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bgpfix/bgpstream/source"
)

func TestConfigureTracksNetworkedOptions(t *testing.T) {
	b := New()
	require.NoError(t, b.Configure("host", "db.example.org"))
	require.True(t, b.networked)
}

func TestStartRejectsNetworkedConfig(t *testing.T) {
	b := New()
	require.NoError(t, b.Configure("host", "db.example.org"))
	err := b.Start(context.Background())
	require.Error(t, err)
}

func TestStartRequiresDBFile(t *testing.T) {
	b := New()
	require.ErrorIs(t, b.Start(context.Background()), source.ErrBackendStart)
}

func TestConfigureRejectsUnknownOption(t *testing.T) {
	b := New()
	require.ErrorIs(t, b.Configure("bogus", "x"), source.ErrUnknownOption)
}
