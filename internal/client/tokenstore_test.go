package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileTokenStore(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))

	token, err := store.Token()
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, store.SetToken("abc123"))

	token, err = store.Token()
	require.NoError(t, err)
	require.Equal(t, "abc123", token)

	require.NoError(t, store.Clear())

	token, err = store.Token()
	require.NoError(t, err)
	require.Empty(t, token)

	// Clearing an already empty store is not an error.
	require.NoError(t, store.Clear())
}
