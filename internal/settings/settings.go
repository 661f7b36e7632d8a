package settings

import (
	"fmt"
	"time"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/kvstore"
	"github.com/Tiliavir/adolog/internal/model"
)

const (
	settingsKey = "adoSettings"
	profileKey  = "developerProfile"
)

// Settings are the user-entered Azure DevOps settings.
type Settings struct {
	PAT          string `json:"pat,omitempty"`
	PATExpiry    string `json:"expiry,omitempty"`
	Organization string `json:"organization,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// Profile is the cached developer profile.
type Profile struct {
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	ID          string    `json:"id,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// RequirePAT returns the personal access token, or a ConfigError when it is
// absent or past its expiry date.
func (s Settings) RequirePAT(now time.Time) (string, error) {
	if s.PAT == "" {
		return "", apperrors.MissingSetting("personal access token")
	}
	if s.PATExpiry != "" {
		exp, err := time.Parse(model.DateLayout, s.PATExpiry)
		if err != nil {
			return "", &apperrors.ConfigError{Setting: "personal access token", Reason: "unreadable expiry " + s.PATExpiry}
		}
		// The expiry date itself is still usable.
		if now.After(exp.AddDate(0, 0, 1)) {
			return "", &apperrors.ConfigError{Setting: "personal access token", Reason: "expired on " + s.PATExpiry}
		}
	}
	return s.PAT, nil
}

// TokenClearer drops the cached OAuth token pair.
type TokenClearer interface {
	Clear() error
}

// Store reads and writes settings and the profile in the key-value store.
type Store struct {
	kv *kvstore.Store
}

func NewStore(kv *kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Load returns the saved settings, or zero Settings when none were saved.
func (s *Store) Load() (Settings, error) {
	var st Settings
	if _, err := s.kv.Get(settingsKey, &st); err != nil {
		return Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return st, nil
}

func (s *Store) Save(st Settings) error {
	if st.PATExpiry != "" {
		if _, err := time.Parse(model.DateLayout, st.PATExpiry); err != nil {
			return fmt.Errorf("expiry must be YYYY-MM-DD: %w", err)
		}
	}
	return s.kv.Set(settingsKey, st)
}

// Clear removes the settings, the cached profile and the token pair.
func (s *Store) Clear(tokens TokenClearer) error {
	if err := s.kv.Delete(settingsKey); err != nil {
		return err
	}
	if err := s.kv.Delete(profileKey); err != nil {
		return err
	}
	if tokens != nil {
		if err := tokens.Clear(); err != nil {
			return fmt.Errorf("clearing tokens: %w", err)
		}
	}
	return nil
}

// Profile returns the cached profile or nil.
func (s *Store) Profile() (*Profile, error) {
	var p Profile
	found, err := s.kv.Get(profileKey, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SaveProfile(p Profile) error {
	return s.kv.Set(profileKey, p)
}
