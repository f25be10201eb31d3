package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Keys used for the session credentials.
const (
	KeyToken    = "token"
	KeyBaseURL  = "baseURL"
	KeyLoggedIn = "isLoggedIn"
)

// ErrNotFound is returned by Get for a key that was never set.
var ErrNotFound = errors.New("storage: key not found")

// Store is a small string key/value store for credentials.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Close() error
}

// JSONStore implements Store using a JSON object in a file readable only
// by the current user.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a JSONStore with the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the storage file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Get returns the value for key.
func (s *JSONStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (s *JSONStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete removes the keys. Missing keys are ignored.
func (s *JSONStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	return s.save(values)
}

// Keys returns the stored keys in sorted order.
func (s *JSONStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; the file is rewritten on every change.
func (s *JSONStore) Close() error { return nil }

// load reads the file. A missing file is an empty store.
func (s *JSONStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return values, nil
}

// save writes the file, creating the directory if needed.
func (s *JSONStore) save(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so a crash never leaves half a token behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// DefaultJSONPath returns the default credentials path: ~/.config/lnk/credentials.json
func DefaultJSONPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.json"), nil
}

// DefaultDir returns the lnk config directory: ~/.config/lnk
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "lnk"), nil
}

// OpenStore opens the backend named in the config. An empty backend
// prefers SQLite if its database exists, otherwise JSON.
func OpenStore(cfg *Config) (Store, error) {
	backend := ""
	if cfg != nil {
		backend = cfg.StorageBackend
	}

	switch backend {
	case BackendSQLite:
		path, err := DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(path)
	case BackendJSON:
		path, err := DefaultJSONPath()
		if err != nil {
			return nil, err
		}
		return NewJSONStore(path), nil
	case "":
		sqlitePath, err := DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(sqlitePath); err == nil {
			return NewSQLiteStore(sqlitePath)
		}
		jsonPath, err := DefaultJSONPath()
		if err != nil {
			return nil, err
		}
		return NewJSONStore(jsonPath), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
