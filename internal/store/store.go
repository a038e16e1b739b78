// Package store is the JSON file-backed profile store behind the intake
// backend. Each saved session is one pretty-printed JSON file named
// session_<YYYYMMDD>_<HHMMSS>.json in the data directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bizvoice/intake/internal/profile"
)

var (
	// ErrNotFound means no session file exists under the given filename.
	ErrNotFound = errors.New("session file not found")
	// ErrInvalidName means the filename is not a safe session filename.
	ErrInvalidName = errors.New("invalid session filename")
)

// Store reads and writes session files in a single data directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	return &Store{dir: dir}, nil
}

// Save writes the draft as a session file under the given filename.
func (s *Store) Save(filename string, draft *profile.Draft) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}

	draft.Normalize()

	raw, err := json.MarshalIndent(draft, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", filename, err)
	}

	//nolint:gosec // Session files need to be readable
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", filename, err)
	}

	return nil
}

// Load reads one session file by filename.
func (s *Store) Load(filename string) (*profile.Draft, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}

		return nil, fmt.Errorf("failed to read session %s: %w", filename, err)
	}

	draft := &profile.Draft{}
	if err := json.Unmarshal(raw, draft); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", filename, err)
	}

	draft.Normalize()
	draft.SourceFilename = filename

	return draft, nil
}

// List returns all stored sessions in lexicographic filename order, which
// for session filenames is also chronological. Files that fail to read or
// decode are skipped with a warning rather than failing the listing.
func (s *Store) List() ([]profile.Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	summaries := make([]profile.Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		draft, err := s.Load(entry.Name())
		if err != nil {
			slog.Warn("skipping unreadable session file", "filename", entry.Name(), "error", err)
			continue
		}

		summaries = append(summaries, profile.Summary{Filename: entry.Name(), Data: *draft})
	}

	return summaries, nil
}

// Delete removes one session file by filename.
func (s *Store) Delete(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}

		return fmt.Errorf("failed to delete session %s: %w", filename, err)
	}

	return nil
}

// path validates the filename and resolves it inside the data directory.
// Anything that could escape the directory is rejected.
func (s *Store) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	return filepath.Join(s.dir, filename), nil
}
