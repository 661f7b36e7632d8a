package model

import "time"

// TokenPair is the cached OAuth access/refresh token pair. ExpiresAtEpochMs is
// an absolute Unix timestamp in milliseconds, never a duration.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	ExpiresAtEpochMs int64  `json:"expires_at"`
}

// ExpiresAt returns the expiry as time.Time.
func (p TokenPair) ExpiresAt() time.Time {
	return time.UnixMilli(p.ExpiresAtEpochMs)
}

// ValidAt reports whether the access token is usable at now with the given
// safety buffer left before expiry.
func (p TokenPair) ValidAt(now time.Time, buffer time.Duration) bool {
	return p.AccessToken != "" && now.Before(p.ExpiresAt().Add(-buffer))
}
