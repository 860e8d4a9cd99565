// Package cache provides the offline layer: a generation-named response
// store, a cache-first request proxy, and the lifecycle manager that installs
// and replaces cache generations.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GenerationPrefix is shared by every cache generation this application owns.
const GenerationPrefix = "amharic-dictionary-v"

// GenerationName builds the versioned cache name. Changing the version makes
// the lifecycle manager replace the whole generation on the next activation.
func GenerationName(version string) string {
	return GenerationPrefix + version
}

// Entry is one cached response, keyed by the request identity.
type Entry struct {
	URL        string      `json:"url"`
	Method     string      `json:"method"`
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Store keeps cached responses on disk, one directory per generation and one
// JSON document per entry. Eviction is whole-generation only.
type Store struct {
	mu      sync.Mutex
	rootDir string
}

// NewStore creates a Store rooted at rootDir.
func NewStore(rootDir string) *Store {
	return &Store{rootDir: rootDir}
}

func (s *Store) generationDir(generation string) string {
	return filepath.Join(s.rootDir, generation)
}

// entryKey derives the file name from the full request identity.
func entryKey(method, url string) string {
	sum := sha256.Sum256([]byte(method + " " + url))
	return hex.EncodeToString(sum[:]) + ".json"
}

// Put stores an entry in the named generation.
func (s *Store) Put(generation string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.generationDir(generation)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll() > %w", err)
	}

	encoded, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("json.Marshal() > %w", err)
	}

	path := filepath.Join(dir, entryKey(e.Method, e.URL))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0644); err != nil {
		return fmt.Errorf("os.WriteFile() > %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("os.Rename() > %w", err)
	}
	return nil
}

// Match looks up the exact request identity in the named generation.
func (s *Store) Match(generation, method, url string) (*Entry, bool, error) {
	path := filepath.Join(s.generationDir(generation), entryKey(method, url))
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("os.ReadFile() > %w", err)
	}

	var e Entry
	if err := json.Unmarshal(contents, &e); err != nil {
		return nil, false, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	return &e, true, nil
}

// Delete removes the named generation entirely. Missing generations are fine.
func (s *Store) Delete(generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.generationDir(generation)); err != nil {
		return fmt.Errorf("os.RemoveAll() > %w", err)
	}
	return nil
}

// Promote atomically replaces the target generation with the staging one.
func (s *Store) Promote(staging, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.generationDir(generation)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("os.RemoveAll() > %w", err)
	}
	if err := os.Rename(s.generationDir(staging), target); err != nil {
		return fmt.Errorf("os.Rename() > %w", err)
	}
	return nil
}

// Generations lists every named cache currently on disk.
func (s *Store) Generations() ([]string, error) {
	entries, err := os.ReadDir(s.rootDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir() > %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
