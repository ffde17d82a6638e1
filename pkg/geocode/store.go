package geocode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"snapsort/pkg/model"
)

// FileStore persists the geocode cache as a single JSON file: a mapping from
// quantized coordinate key to place description.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the cache file. A missing or unreadable file yields an empty
// mapping; corruption is logged and treated as empty, never as a failure.
func (s *FileStore) Load() map[string]model.Place {
	entries := make(map[string]model.Place)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to read geocode cache, starting clean", "path", s.path, "error", err)
		}
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Corrupted geocode cache, starting clean", "path", s.path, "error", err)
		return make(map[string]model.Place)
	}

	slog.Info("Loaded geocode cache", "path", s.path, "entries", len(entries))
	return entries
}

// Save rewrites the whole cache file. Full rewrite per insertion is fine at
// personal-library scale; external lookups dominate latency anyway.
func (s *FileStore) Save(entries map[string]model.Place) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
