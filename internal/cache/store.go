package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Reasons a persisted snapshot is rejected. Load logs them and reports a
// cold start; Read returns them.
var (
	ErrCorruptCache   = errors.New("corrupt cache")
	ErrSchemaMismatch = errors.New("cache schema mismatch")
)

// ErrNoCacheAvailable means an operation needed cached data and none was
// usable.
var ErrNoCacheAvailable = errors.New("no cached data available")

// Store reads and atomically replaces the cache file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a Store for the cache file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the cache file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted snapshot, or nil when there is none usable.
// Missing, unreadable, corrupt and version-mismatched files all mean a
// cold start.
func (s *Store) Load() *Snapshot {
	snap, err := s.Read()
	switch {
	case err == nil:
		return snap
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("no cache file, cold start", "path", s.path)
	case errors.Is(err, ErrSchemaMismatch):
		s.logger.Warn("discarding cache written by another version", "path", s.path, "error", err)
	case errors.Is(err, ErrCorruptCache):
		s.logger.Warn("discarding unreadable cache", "path", s.path, "error", err)
	default:
		s.logger.Warn("could not read cache, continuing without it", "path", s.path, "error", err)
	}
	return nil
}

// Read is Load with the rejection reason returned.
func (s *Store) Read() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var header struct {
		SchemaVersion *int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if header.SchemaVersion == nil {
		return nil, fmt.Errorf("%w: no schema_version", ErrCorruptCache)
	}
	if *header.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: file has %d, want %d", ErrSchemaMismatch, *header.SchemaVersion, SchemaVersion)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	return &snap, nil
}

// Save persists snap. The new content is written to a temporary file in
// the cache directory and renamed over the old one, so readers see either
// the previous snapshot or the new one, never a torn write.
func (s *Store) Save(snap *Snapshot) error {
	snap.SchemaVersion = SchemaVersion

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace cache: %w", err)
	}

	s.logger.Debug("saved cache", "path", s.path, "tasks", len(snap.Tasks), "fetched_at", snap.FetchedAt)
	return nil
}

// Invalidate persists a copy of snap that every staleness check treats as
// expired. The cached data stays available for offline reads.
func (s *Store) Invalidate(snap *Snapshot) error {
	c := snap.Clone()
	c.FetchedAt = time.Time{}
	return s.Save(c)
}

// Clear removes the cache file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache: %w", err)
	}
	return nil
}
