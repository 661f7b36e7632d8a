package settings_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/kvstore"
	"github.com/Tiliavir/adolog/internal/settings"
)

type clearCounter int

func (c *clearCounter) Clear() error {
	*c++
	return nil
}

func newStore(t *testing.T) *settings.Store {
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	return settings.NewStore(kv)
}

func TestRequirePAT(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		st      settings.Settings
		wantErr bool
	}{
		{"missing", settings.Settings{}, true},
		{"no expiry", settings.Settings{PAT: "p"}, false},
		{"expires today", settings.Settings{PAT: "p", PATExpiry: "2026-03-10"}, false},
		{"expired", settings.Settings{PAT: "p", PATExpiry: "2026-03-09"}, true},
		{"garbage expiry", settings.Settings{PAT: "p", PATExpiry: "soon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat, err := tt.st.RequirePAT(now)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrConfigurationMissing)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "p", pat)
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := newStore(t)

	st, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, settings.Settings{}, st)

	want := settings.Settings{PAT: "pat", PATExpiry: "2026-12-31", Organization: "contoso", ClientSecret: "shh"}
	require.NoError(t, s.Save(want))

	st, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, want, st)

	require.Error(t, s.Save(settings.Settings{PATExpiry: "31.12.2026"}))
}

func TestStoreClear(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(settings.Settings{PAT: "pat"}))
	require.NoError(t, s.SaveProfile(settings.Profile{DisplayName: "Ada"}))

	p, err := s.Profile()
	require.NoError(t, err)
	require.Equal(t, "Ada", p.DisplayName)

	var tokens clearCounter
	require.NoError(t, s.Clear(&tokens))
	require.Equal(t, clearCounter(1), tokens, "clearing settings drops the token pair")

	st, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, st.PAT)

	p, err = s.Profile()
	require.NoError(t, err)
	require.Nil(t, p)
}
