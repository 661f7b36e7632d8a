// Package auth implements the OAuth authorization code flow against the
// Microsoft identity platform and keeps the resulting token pair fresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/logger"
	"github.com/Tiliavir/adolog/internal/model"
)

const (
	// ExpiryBuffer is how long before expiry a cached token stops being used.
	ExpiryBuffer = 60 * time.Second

	// defaultLifetime applies when the token endpoint omits expires_in.
	defaultLifetime = time.Hour
)

// State is the last lifecycle step observed by GetValidToken.
type State int

const (
	StateNoToken State = iota
	StateValid
	StateExpiring
	StateRefreshing
	StateReauthenticating
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "NO_TOKEN"
	case StateValid:
		return "VALID"
	case StateExpiring:
		return "EXPIRING"
	case StateRefreshing:
		return "REFRESHING"
	case StateReauthenticating:
		return "REAUTHENTICATING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Launcher drives the interactive part of the flow: it sends the user to
// authURL and returns the full redirect URL the provider sent back.
type Launcher interface {
	Launch(ctx context.Context, authURL string) (string, error)
}

type Config struct {
	AuthURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// Used for token endpoint calls. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// If nil, time.Now is used.
	Now func() time.Time
}

type Authenticator struct {
	oauth    *oauth2.Config
	store    TokenStore
	launcher Launcher
	log      logger.Logger
	client   *http.Client
	now      func() time.Time

	mu    sync.Mutex
	state State
}

func New(cfg Config, store TokenStore, launcher Launcher, log logger.Logger) (*Authenticator, error) {
	if cfg.ClientID == "" {
		return nil, apperrors.MissingSetting("oauth.client_id")
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, apperrors.MissingSetting("oauth endpoints")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:    store,
		launcher: launcher,
		log:      log.WithGroup("auth"),
		client:   cfg.HTTPClient,
		now:      cfg.Now,
	}, nil
}

// State returns the lifecycle step observed by the most recent call.
func (a *Authenticator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Authenticator) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	a.log.Debug("token state", "state", s.String())
}

// Inspect classifies the stored pair without any network call.
func (a *Authenticator) Inspect() (State, *model.TokenPair, error) {
	pair, err := a.store.Get()
	if err != nil {
		return StateNoToken, nil, err
	}
	switch {
	case pair == nil:
		return StateNoToken, nil, nil
	case pair.ValidAt(a.now(), ExpiryBuffer):
		return StateValid, pair, nil
	default:
		return StateExpiring, pair, nil
	}
}

// AuthCodeURL builds the provider login URL for the given anti-forgery state.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("response_mode", "query"))
}

// GetValidToken returns a usable access token. A cached token outside the
// expiry buffer is returned as is; otherwise one refresh is attempted and,
// failing that, the interactive flow runs.
func (a *Authenticator) GetValidToken(ctx context.Context) (string, error) {
	pair, err := a.validPair(ctx)
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

func (a *Authenticator) validPair(ctx context.Context) (model.TokenPair, error) {
	pair, err := a.store.Get()
	if err != nil {
		a.log.Warn("cached token unreadable, signing in again", "error", err)
		pair = nil
	}

	switch {
	case pair == nil:
		a.setState(StateNoToken)
	case pair.ValidAt(a.now(), ExpiryBuffer):
		a.setState(StateValid)
		return *pair, nil
	default:
		a.setState(StateExpiring)
	}

	if pair != nil && pair.RefreshToken != "" {
		a.setState(StateRefreshing)
		refreshed, err := a.refresh(ctx, pair.RefreshToken)
		if err == nil {
			return refreshed, nil
		}
		a.log.Warn("token refresh failed, re-authenticating", "error", err)
	}

	a.setState(StateReauthenticating)
	return a.Authenticate(ctx)
}

// Authenticate runs the interactive authorization code flow and stores the
// resulting pair. The store is left untouched on any failure.
func (a *Authenticator) Authenticate(ctx context.Context) (model.TokenPair, error) {
	if a.launcher == nil {
		return model.TokenPair{}, errors.New("interactive sign-in is not available, run `adolog login`")
	}

	state := uuid.NewString()
	redirect, err := a.launcher.Launch(ctx, a.AuthCodeURL(state))
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign-in: %w", err)
	}

	code, err := ExtractAuthCode(redirect, state)
	if err != nil {
		return model.TokenPair{}, err
	}

	tok, err := a.oauth.Exchange(a.withClient(ctx), code,
		oauth2.SetAuthURLParam("scope", strings.Join(a.oauth.Scopes, " ")))
	if err != nil {
		return model.TokenPair{}, exchangeError(err)
	}

	pair := a.toPair(tok)
	if err := a.store.Set(pair); err != nil {
		return model.TokenPair{}, fmt.Errorf("saving token: %w", err)
	}
	a.log.Info("signed in", "expires_at", pair.ExpiresAt().Format(time.RFC3339))
	return pair, nil
}

// Logout drops the stored token pair.
func (a *Authenticator) Logout() error {
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	a.setState(StateNoToken)
	return nil
}

func (a *Authenticator) refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	// An empty access token forces the source to hit the token endpoint once.
	src := a.oauth.TokenSource(a.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return model.TokenPair{}, exchangeError(err)
	}

	pair := a.toPair(tok)
	if err := a.store.Set(pair); err != nil {
		return model.TokenPair{}, fmt.Errorf("saving refreshed token: %w", err)
	}
	a.log.Debug("token refreshed", "expires_at", pair.ExpiresAt().Format(time.RFC3339))
	return pair, nil
}

func (a *Authenticator) withClient(ctx context.Context) context.Context {
	if a.client == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.client)
}

func (a *Authenticator) toPair(tok *oauth2.Token) model.TokenPair {
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = a.now().Add(defaultLifetime)
	}
	return model.TokenPair{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		ExpiresAtEpochMs: expiry.UnixMilli(),
	}
}

// exchangeError maps a token endpoint rejection to a TokenExchangeError.
// Transport errors are wrapped unchanged.
func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return fmt.Errorf("token request: %w", err)
	}
	te := &apperrors.TokenExchangeError{
		ProviderError: re.ErrorCode,
		Description:   re.ErrorDescription,
	}
	if re.Response != nil {
		te.HTTPStatus = re.Response.StatusCode
	}
	if te.ProviderError == "" && len(re.Body) > 0 {
		te.ProviderError = strings.TrimSpace(string(re.Body))
	}
	return te
}
