package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todo/internal/cache"
	"todo/internal/config"
)

func TestNew_DefaultPaths(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))

	cfg, err := config.New("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(base, "config", "todo"); cfg.Dir != want {
		t.Errorf("expected dir %q, got %q", want, cfg.Dir)
	}
	if want := filepath.Join(base, "cache", "todo", "cache.json"); cfg.CachePath != want {
		t.Errorf("expected cache path %q, got %q", want, cfg.CachePath)
	}
	if cfg.TokenPath() != filepath.Join(cfg.Dir, "token.json") {
		t.Errorf("unexpected token path %q", cfg.TokenPath())
	}
	if cfg.Settings.Backend != config.BackendAsana {
		t.Errorf("expected default backend, got %q", cfg.Settings.Backend)
	}
}

func TestNew_ExplicitPaths(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "elsewhere.json")

	cfg, err := config.New(dir, cachePath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != dir || cfg.CachePath != cachePath {
		t.Errorf("expected explicit paths, got %q and %q", cfg.Dir, cfg.CachePath)
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `backend: googletasks
workspace: ws1
focus_project: p1
max_age: 90s
show_completed: true
asana:
  client_id: abc
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := config.LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Backend != config.BackendGoogleTasks || s.Workspace != "ws1" || s.FocusProject != "p1" {
		t.Errorf("unexpected settings %+v", s)
	}
	if time.Duration(s.MaxAge) != 90*time.Second {
		t.Errorf("expected 90s, got %v", time.Duration(s.MaxAge))
	}
	if !s.ShowCompleted || !s.Asana.HasOAuthApp() {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.FocusPattern != config.DefaultFocusPattern {
		t.Errorf("expected default focus pattern kept, got %q", s.FocusPattern)
	}
}

func TestLoadSettings_MissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	s, err := config.LoadSettings(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if time.Duration(s.MaxAge) != config.DefaultMaxAge {
		t.Errorf("expected default max age, got %v", time.Duration(s.MaxAge))
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadSettings(empty); err != nil {
		t.Errorf("empty file: %v", err)
	}
}

func TestLoadSettings_Never(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_age: never\n"), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if time.Duration(s.MaxAge) != cache.NeverStale {
		t.Errorf("expected NeverStale, got %v", time.Duration(s.MaxAge))
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown backend", "backend: trello\n"},
		{"bad duration", "max_age: soon\n"},
		{"negative duration", "max_age: -5m\n"},
		{"bad pattern", "focus_pattern: \"(\"\n"},
		{"unknown field", "colour: blue\n"},
		{"not yaml", "backend: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := config.LoadSettings(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSettings_Encode(t *testing.T) {
	var buf bytes.Buffer
	if err := config.Defaults().Encode(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "backend: asana") || !strings.Contains(out, "max_age: 5m0s") {
		t.Errorf("unexpected encoding:\n%s", out)
	}
}
