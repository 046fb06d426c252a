package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"todo/internal/cache"
)

// Backends understood by the backend setting.
const (
	BackendAsana       = "asana"
	BackendGoogleTasks = "googletasks"
)

// DefaultMaxAge is how old a cached snapshot may be before reads refresh it.
const DefaultMaxAge = 5 * time.Minute

// DefaultFocusPattern marks Asana projects whose name mentions "focus".
const DefaultFocusPattern = "(?i)focus"

// Settings is the user settings document.
type Settings struct {
	Backend       string        `yaml:"backend"`
	Workspace     string        `yaml:"workspace"`
	FocusProject  string        `yaml:"focus_project"`
	FocusPattern  string        `yaml:"focus_pattern"`
	MaxAge        Duration      `yaml:"max_age"`
	ShowCompleted bool          `yaml:"show_completed"`
	Asana         AsanaSettings `yaml:"asana"`
}

// AsanaSettings configures an optional Asana OAuth app. Without one, login
// takes a personal access token.
type AsanaSettings struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// HasOAuthApp reports whether an Asana OAuth app is configured.
func (a AsanaSettings) HasOAuthApp() bool {
	return a.ClientID != ""
}

// Duration is a time.Duration written as a Go duration string, or "never"
// for no limit.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "never") {
		*d = Duration(cache.NeverStale)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, s)
	}
	if v < 0 {
		return fmt.Errorf("line %d: duration must not be negative", node.Line)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	if time.Duration(d) == cache.NeverStale {
		return "never", nil
	}
	return time.Duration(d).String(), nil
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		Backend:      BackendAsana,
		FocusPattern: DefaultFocusPattern,
		MaxAge:       Duration(DefaultMaxAge),
	}
}

// LoadSettings reads the settings file at path. A missing file yields
// Defaults; fields absent from the file keep their defaults.
func LoadSettings(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

// Validate checks values the decoder cannot.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendAsana, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", s.Backend, BackendAsana, BackendGoogleTasks)
	}
	if _, err := regexp.Compile(s.FocusPattern); err != nil {
		return fmt.Errorf("focus_pattern: %w", err)
	}
	return nil
}

// FocusRegexp compiles FocusPattern. Validate has already checked it.
func (s Settings) FocusRegexp() *regexp.Regexp {
	return regexp.MustCompile(s.FocusPattern)
}

// Encode writes the settings as YAML.
func (s Settings) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
