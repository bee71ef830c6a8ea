package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusString(t *testing.T) {
	require.Equal(t, "ok", OK.String())
	require.Equal(t, "empty", Empty.String())
	require.Equal(t, "error", Error.String())
}

func TestRegisterPopulatesRegistry(t *testing.T) {
	name := "test-stub-backend"
	Register(name, func() Backend { return nil })
	_, ok := Registry[name]
	require.True(t, ok)
	delete(Registry, name)
}
