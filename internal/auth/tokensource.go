package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the Authenticator to oauth2.TokenSource so HTTP clients
// built with oauth2.NewClient attach a fresh bearer token to every request.
// Tokens expire for the client at the start of the expiry buffer, which sends
// the next request back through refresh or sign-in.
func (a *Authenticator) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &authenticatorSource{ctx: ctx, a: a}
}

type authenticatorSource struct {
	ctx context.Context
	a   *Authenticator
}

func (s *authenticatorSource) Token() (*oauth2.Token, error) {
	pair, err := s.a.validPair(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		Expiry:      pair.ExpiresAt().Add(-ExpiryBuffer),
	}, nil
}
