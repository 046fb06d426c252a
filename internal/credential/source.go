package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/clock"
	"todo/internal/service"
)

// MinForceInterval is the shortest time between two forced refreshes.
// A second 401 inside this window is reported as an auth failure.
const MinForceInterval = 5 * time.Minute

// Source is an oauth2.TokenSource over the stored credential. Refreshed
// OAuth tokens are written back to the store.
type Source struct {
	store  *Store
	config *oauth2.Config
	clock  clock.Clock
	ctx    context.Context

	mu         sync.Mutex
	cred       Credential
	base       oauth2.TokenSource
	lastForced time.Time
}

// NewSource loads the credential and returns a Source for it. config is
// required for OAuth credentials and ignored for personal access tokens.
// ctx carries the HTTP client used for refreshes and must outlive the
// Source.
func NewSource(ctx context.Context, store *Store, config *oauth2.Config, clk clock.Clock) (*Source, error) {
	cred, err := store.Load()
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real()
	}

	s := &Source{store: store, config: config, clock: clk, ctx: ctx, cred: cred}
	switch cred.Kind {
	case KindPAT:
		s.base = oauth2.StaticTokenSource(cred.Token())
	case KindOAuth:
		if config == nil {
			return nil, fmt.Errorf("oauth credential stored but no oauth client configured: %w", service.ErrAuth)
		}
		s.base = config.TokenSource(ctx, cred.Token())
	default:
		return nil, fmt.Errorf("unknown credential kind %q: %w", cred.Kind, service.ErrAuth)
	}
	return s, nil
}

// Kind returns the kind of the loaded credential.
func (s *Source) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred.Kind
}

// Token implements oauth2.TokenSource.
func (s *Source) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenLocked()
}

// ForceRefresh discards the current access token and obtains a new one
// with the refresh token. It fails for personal access tokens and when
// the previous forced refresh was less than MinForceInterval ago.
func (s *Source) ForceRefresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred.Kind != KindOAuth || s.cred.RefreshToken == "" {
		return fmt.Errorf("token rejected and cannot be refreshed (run: todo login): %w", service.ErrAuth)
	}
	now := s.clock.Now()
	if !s.lastForced.IsZero() && now.Sub(s.lastForced) < MinForceInterval {
		return fmt.Errorf("token rejected again right after a refresh (run: todo login): %w", service.ErrAuth)
	}
	s.lastForced = now

	expired := &oauth2.Token{RefreshToken: s.cred.RefreshToken}
	s.base = s.config.TokenSource(s.ctx, expired)
	_, err := s.tokenLocked()
	return err
}

func (s *Source) tokenLocked() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, classify(err)
	}
	if s.cred.Kind == KindOAuth && tok.AccessToken != s.cred.AccessToken {
		next := FromToken(tok)
		if next.RefreshToken == "" {
			next.RefreshToken = s.cred.RefreshToken
		}
		s.cred = next
		if err := s.store.Save(next); err != nil {
			s.store.logger.Warn("could not persist refreshed token", "error", err)
		} else {
			s.store.logger.Debug("persisted refreshed token", "expiry", next.Expiry)
		}
	}
	return tok, nil
}

// classify maps a token endpoint failure to a service error kind. A
// response from the endpoint means the grant was refused; anything else is
// a transport problem.
func classify(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("token refresh refused (run: todo login): %v: %w", err, service.ErrAuth)
	}
	return fmt.Errorf("token refresh failed: %v: %w", err, service.ErrRemoteUnavailable)
}
