package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/adolog/internal/auth"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-checked"))
	require.NoError(t, err)
	return tok
}

func TestNameFromToken(t *testing.T) {
	t.Run("prefers name", func(t *testing.T) {
		name, err := auth.NameFromToken(signed(t, jwt.MapClaims{"name": "Ada Lovelace", "upn": "ada@contoso.com"}))
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", name)
	})

	t.Run("falls back to upn", func(t *testing.T) {
		name, err := auth.NameFromToken(signed(t, jwt.MapClaims{"upn": "ada@contoso.com"}))
		require.NoError(t, err)
		assert.Equal(t, "ada@contoso.com", name)
	})

	t.Run("no name claims", func(t *testing.T) {
		_, err := auth.NameFromToken(signed(t, jwt.MapClaims{"sub": "123"}))
		require.Error(t, err)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := auth.NameFromToken("EwBwA8l6BAAU")
		require.Error(t, err)
	})
}
