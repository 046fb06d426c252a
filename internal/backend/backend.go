// Package backend builds the configured service.Remote from settings and
// the stored credential.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"todo/internal/backend/asana"
	"todo/internal/backend/googletasks"
	"todo/internal/clock"
	"todo/internal/config"
	"todo/internal/credential"
	"todo/internal/service"
)

// OAuthConfig returns the OAuth client of the configured backend. It is nil
// for Asana without a configured app, where login takes a personal access
// token instead.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	switch cfg.Settings.Backend {
	case config.BackendGoogleTasks:
		clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("oauth_client.json not found in %s: %w", cfg.Dir, service.ErrAuth)
			}
			return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
		}
		return googletasks.OAuthConfig(clientJSON)
	default:
		if !cfg.Settings.Asana.HasOAuthApp() {
			return nil, nil
		}
		return asana.OAuthConfig(cfg.Settings.Asana.ClientID, cfg.Settings.Asana.ClientSecret), nil
	}
}

// Open returns the Remote for cfg authenticated by the credential in store.
// ctx must outlive the Remote; token refreshes run under it.
func Open(ctx context.Context, cfg *config.Config, store *credential.Store, clk clock.Clock, logger *slog.Logger) (service.Remote, error) {
	oauthCfg, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	src, err := credential.NewSource(ctx, store, oauthCfg, clk)
	if err != nil {
		return nil, err
	}

	switch cfg.Settings.Backend {
	case config.BackendGoogleTasks:
		logger.Debug("opening backend", "backend", cfg.Settings.Backend)
		client, err := googletasks.New(ctx, src, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		logger.Debug("opening backend", "backend", cfg.Settings.Backend, "credential", src.Kind())
		return asana.New(asana.Options{
			Tokens:       src,
			Refresher:    src,
			FocusPattern: cfg.Settings.FocusRegexp(),
			Logger:       logger,
		}), nil
	}
}
