package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaims is the subset of Microsoft identity token claims that name
// the signed-in user.
type identityClaims struct {
	jwt.RegisteredClaims
	Name              string `json:"name"`
	UPN               string `json:"upn"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

// NameFromToken reads the display name from an access token. The signature is
// not verified: the token is only used to label time logs, and the provider
// verifies it on every API call.
func NameFromToken(accessToken string) (string, error) {
	var claims identityClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return "", fmt.Errorf("reading token claims: %w", err)
	}
	for _, name := range []string{claims.Name, claims.UPN, claims.PreferredUsername, claims.Email} {
		if name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("token carries no name claim")
}
