package auth

import (
	"fmt"
	"net/url"

	"github.com/Tiliavir/adolog/internal/apperrors"
)

// ExtractAuthCode returns the `code` query parameter of the provider redirect.
// When wantState is set and the redirect carries a state, both must match.
func ExtractAuthCode(redirectURL, wantState string) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable redirect URL: %v", apperrors.ErrAuthCodeMissing, err)
	}
	q := u.Query()

	if got := q.Get("state"); wantState != "" && got != "" && got != wantState {
		return "", apperrors.ErrAuthStateMismatch
	}

	code := q.Get("code")
	if code == "" {
		if reason := q.Get("error"); reason != "" {
			return "", fmt.Errorf("%w: %s: %s", apperrors.ErrAuthCodeMissing, reason, q.Get("error_description"))
		}
		return "", apperrors.ErrAuthCodeMissing
	}
	return code, nil
}
