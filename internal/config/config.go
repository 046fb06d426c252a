// Package config handles XDG configuration and cache paths and the user
// settings file.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored credential filename.
	TokenFile = "token.json"

	// SettingsFile is the user settings filename.
	SettingsFile = "config.yaml"

	// LockFile guards interactive logins.
	LockFile = "auth.lock"

	// CacheFile is the cache snapshot filename.
	CacheFile = "cache.json"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// CachePath is the cache snapshot path.
	CachePath string

	// Settings is the parsed settings file, or defaults.
	Settings Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory
// and cache path, and loads the settings file from the config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// If cachePath is empty, uses XDG_CACHE_HOME/todo/cache.json or
// $HOME/.cache/todo/cache.json.
func New(configDir, cachePath string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	if cachePath == "" {
		cachePath = filepath.Join(DefaultCacheDir(), CacheFile)
	}

	settings, err := LoadSettings(filepath.Join(dir, SettingsFile))
	if err != nil {
		return nil, err
	}
	return &Config{Dir: dir, CachePath: cachePath, Settings: settings}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultCacheDir returns the default cache directory.
// Uses XDG_CACHE_HOME if set, otherwise $HOME/.cache.
func DefaultCacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) string {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, fallback, AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored credential file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// LockPath returns the path to the auth lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Dir, LockFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}
