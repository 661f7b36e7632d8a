package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/adolog/internal/apperrors"
	"github.com/Tiliavir/adolog/internal/auth"
	"github.com/Tiliavir/adolog/internal/config"
	"github.com/Tiliavir/adolog/internal/gateway"
	"github.com/Tiliavir/adolog/internal/kvstore"
	"github.com/Tiliavir/adolog/internal/logger"
	"github.com/Tiliavir/adolog/internal/settings"
	"github.com/Tiliavir/adolog/internal/timelog"
	"github.com/Tiliavir/adolog/internal/workitem"
)

// app holds the dependencies shared by commands. Expensive collaborators are
// built on first use.
type app struct {
	cfg      config.Config
	log      logger.Logger
	settings *settings.Store
	tokens   *auth.KVTokenStore
	now      func() time.Time
	cmd      *cobra.Command
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if backendFlag != "" {
		switch backendFlag {
		case config.BackendREST, config.BackendWorkbook:
			cfg.Backend = backendFlag
		default:
			return nil, fmt.Errorf("unknown backend %q", backendFlag)
		}
	}

	log, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	kv, err := kvstore.Open(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		settings: settings.NewStore(kv),
		tokens:   auth.NewKVTokenStore(kv),
		now:      time.Now,
		cmd:      cmd,
	}, nil
}

func (a *app) loadSettings() settings.Settings {
	st, err := a.settings.Load()
	if err != nil {
		a.log.Warn("settings unreadable, using defaults", "error", err)
	}
	return st
}

// organization prefers the config file over the saved settings.
func (a *app) organization() string {
	if a.cfg.DevOps.Organization != "" {
		return a.cfg.DevOps.Organization
	}
	return a.loadSettings().Organization
}

// authenticator requires a client secret; sign-in cannot work without one.
func (a *app) authenticator() (*auth.Authenticator, error) {
	secret := a.clientSecret()
	if secret == "" {
		return nil, apperrors.MissingSetting("client secret")
	}
	return a.buildAuthenticator(secret)
}

func (a *app) clientSecret() string {
	if a.cfg.OAuth.ClientSecret != "" {
		return a.cfg.OAuth.ClientSecret
	}
	return a.loadSettings().ClientSecret
}

func (a *app) buildAuthenticator(secret string) (*auth.Authenticator, error) {
	launcher := &auth.LoopbackLauncher{
		RedirectURI: a.cfg.OAuth.RedirectURI,
		Out:         a.cmd.ErrOrStderr(),
		Log:         a.log,
	}
	return auth.New(auth.Config{
		AuthURL:      a.cfg.OAuth.AuthURL,
		TokenURL:     a.cfg.OAuth.TokenURL,
		ClientID:     a.cfg.OAuth.ClientID,
		ClientSecret: secret,
		RedirectURI:  a.cfg.OAuth.RedirectURI,
		Scopes:       strings.Fields(a.cfg.OAuth.Scope),
	}, a.tokens, launcher, a.log)
}

// workItems returns the Azure DevOps client, or a ConfigError without a
// usable personal access token.
func (a *app) workItems() (*workitem.Client, error) {
	pat, err := a.loadSettings().RequirePAT(a.now())
	if err != nil {
		return nil, err
	}
	return workitem.New(workitem.Config{
		BaseURL:    a.cfg.DevOps.BaseURL,
		ProfileURL: a.cfg.DevOps.ProfileURL,
		PAT:        pat,
	})
}

func (a *app) gateway(ctx context.Context) (gateway.Gateway, error) {
	switch a.cfg.Backend {
	case config.BackendWorkbook:
		authn, err := a.authenticator()
		if err != nil {
			return nil, err
		}
		client := oauth2.NewClient(ctx, authn.TokenSource(ctx))
		return gateway.NewWorkbook(gateway.WorkbookConfig{
			BaseURL: a.cfg.Graph.BaseURL,
			Path:    a.cfg.Graph.WorkbookPath,
			Table:   a.cfg.Graph.TableName,
		}, client, a.log), nil
	default:
		if a.cfg.REST.BaseURL == "" {
			return nil, apperrors.MissingSetting("rest.base_url")
		}
		return gateway.NewREST(a.cfg.REST.BaseURL, nil), nil
	}
}

func (a *app) service(ctx context.Context) (*timelog.Service, error) {
	gw, err := a.gateway(ctx)
	if err != nil {
		return nil, err
	}
	var items timelog.WorkItemSource
	if c, err := a.workItems(); err == nil {
		items = c
	} else {
		a.log.Debug("work item lookup disabled", "reason", err)
	}
	return timelog.NewService(gw, items, a.log), nil
}

// developer resolves the name written into logs: config, then the cached
// profile, then the Azure DevOps profile, then the signed-in Graph token.
func (a *app) developer(ctx context.Context) (string, error) {
	if name := a.cfg.DevOps.DeveloperName; name != "" {
		return name, nil
	}

	if p, err := a.settings.Profile(); err != nil {
		a.log.Warn("cached profile unreadable", "error", err)
	} else if p != nil && p.DisplayName != "" {
		return p.DisplayName, nil
	}

	if c, err := a.workItems(); err == nil {
		p, err := c.Profile(ctx)
		if err == nil && p.DisplayName != "" {
			if err := a.settings.SaveProfile(p); err != nil {
				a.log.Warn("could not cache profile", "error", err)
			}
			return p.DisplayName, nil
		}
		a.log.Debug("profile lookup failed", "error", err)
	}

	if pair, err := a.tokens.Get(); err == nil && pair != nil {
		if name, err := auth.NameFromToken(pair.AccessToken); err == nil {
			return name, nil
		}
	}

	return "", apperrors.MissingSetting("devops.developer_name")
}
