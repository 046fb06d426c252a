// Package credential stores the user's credential and hands out valid
// access tokens, refreshing OAuth tokens as needed.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/service"
)

// EnvToken names the environment variable that supplies a personal access
// token without touching the token file.
const EnvToken = "TODO_TOKEN"

// ErrNoCredential means nothing is stored and the environment supplies no
// token.
var ErrNoCredential = fmt.Errorf("not logged in (run: todo login): %w", service.ErrAuth)

// Kind distinguishes static personal access tokens from OAuth tokens.
type Kind string

const (
	KindPAT   Kind = "pat"
	KindOAuth Kind = "oauth"
)

// Credential is what token.json holds.
type Credential struct {
	Kind         Kind      `json:"kind"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// FromToken converts an OAuth token.
func FromToken(tok *oauth2.Token) Credential {
	return Credential{
		Kind:         KindOAuth,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

// PersonalAccessToken returns a credential for a static token.
func PersonalAccessToken(token string) Credential {
	return Credential{Kind: KindPAT, AccessToken: token}
}

// Token returns the credential as an oauth2 token.
func (c Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// Store reads and writes token.json.
type Store struct {
	path   string
	logger *slog.Logger

	// Getenv reads the environment. Tests replace it.
	Getenv func(string) string
}

// NewStore returns a Store for the token file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger, Getenv: os.Getenv}
}

// Path returns the token file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the credential from the environment or the token file.
func (s *Store) Load() (Credential, error) {
	if tok := s.Getenv(EnvToken); tok != "" {
		s.logger.Debug("using token from environment", "var", EnvToken)
		return PersonalAccessToken(tok), nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credential{}, ErrNoCredential
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read token file: %w", err)
	}

	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return Credential{}, fmt.Errorf("invalid token file %s: %v: %w", s.path, err, service.ErrAuth)
	}
	if c.Kind == "" {
		// Files written by older releases held a bare oauth2.Token.
		c.Kind = KindOAuth
	}
	if c.AccessToken == "" && c.RefreshToken == "" {
		return Credential{}, fmt.Errorf("token file %s holds no token: %w", s.path, service.ErrAuth)
	}
	return c, nil
}

// Save writes c with mode 0600, replacing the file atomically.
func (s *Store) Save(c Credential) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set token permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Exists reports whether a token file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Remove deletes the token file. A missing file is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
