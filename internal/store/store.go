// File: internal/store/store.go
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound reports that no saved state exists for the page ID.
var ErrNotFound = errors.New("session state not found")

// pageIDPattern restricts page IDs to filename-safe characters.
var pageIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store persists per-page session state (cookies, history) as JSON files
// under a single directory, one file per page ID.
type Store struct {
	dir string
	log *zap.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}
	return &Store{
		dir: dir,
		log: logger.Named("store"),
	}, nil
}

func (s *Store) path(pageID string) (string, error) {
	if !pageIDPattern.MatchString(pageID) {
		return "", fmt.Errorf("invalid page ID %q", pageID)
	}
	return filepath.Join(s.dir, pageID+".json"), nil
}

// Save serializes state for the page ID, replacing any previous snapshot.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a torn session file.
func (s *Store) Save(pageID string, state any) error {
	path, err := s.path(pageID)
	if err != nil {
		return err
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit session file: %w", err)
	}

	s.log.Debug("Session state saved", zap.String("page_id", pageID), zap.Int("bytes", len(blob)))
	return nil
}

// Load deserializes the saved state for the page ID into out. Returns
// ErrNotFound when no snapshot exists.
func (s *Store) Load(pageID string, out any) error {
	path, err := s.path(pageID)
	if err != nil {
		return err
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, pageID)
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(blob, out); err != nil {
		return fmt.Errorf("failed to unmarshal session state: %w", err)
	}

	s.log.Debug("Session state loaded", zap.String("page_id", pageID), zap.Int("bytes", len(blob)))
	return nil
}
