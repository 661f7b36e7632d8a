package kvstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/adolog/internal/kvstore"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	s, err := kvstore.Open(dir)
	require.NoError(t, err)

	var got doc
	found, err := s.Get("missing", &got)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set("doc", doc{Name: "a", Count: 1}))
	require.NoError(t, s.Set("doc", doc{Name: "b", Count: 2}))

	found, err = s.Get("doc", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, doc{Name: "b", Count: 2}, got)

	reopened, err := kvstore.Open(dir)
	require.NoError(t, err)
	found, err = reopened.Get("doc", &got)
	require.NoError(t, err)
	require.True(t, found, "value survives reopening")

	require.NoError(t, s.Delete("doc"))
	require.NoError(t, s.Delete("doc"), "deleting twice is fine")
	found, err = s.Get("doc", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreCorruptValue(t *testing.T) {
	dir := t.TempDir()
	s, err := kvstore.Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken"), []byte("{nope"), 0o600))

	var got doc
	_, err = s.Get("broken", &got)
	require.Error(t, err)
}

func TestStoreRejectsPathKeys(t *testing.T) {
	s, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)

	require.Error(t, s.Set("../escape", doc{}))
	require.Error(t, s.Set("", doc{}))
}
