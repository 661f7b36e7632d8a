package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/adolog/internal/auth"
	"github.com/Tiliavir/adolog/internal/kvstore"
	"github.com/Tiliavir/adolog/internal/model"
)

func TestKVTokenStore(t *testing.T) {
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	store := auth.NewKVTokenStore(kv)

	got, err := store.Get()
	require.NoError(t, err)
	assert.Nil(t, got)

	pair := model.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresAtEpochMs: 1767225600000}
	require.NoError(t, store.Set(pair))

	got, err = store.Get()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pair, *got)

	require.NoError(t, store.Set(model.TokenPair{AccessToken: "b", ExpiresAtEpochMs: 1}))
	got, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "b", got.AccessToken)
	assert.Empty(t, got.RefreshToken)

	require.NoError(t, store.Clear())
	got, err = store.Get()
	require.NoError(t, err)
	assert.Nil(t, got)
}
