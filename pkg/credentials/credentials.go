// Package credentials stores the signed-in session on disk between runs.
package credentials

import (
	"os"
	"path/filepath"
	"sync"

	json "github.com/json-iterator/go"

	"github.com/0xAcousticbridge/GAID/pkg/config"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// FileStore is a remote.SessionStore backed by one JSON file, owner read/write only
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore stores the session at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Default stores the session at the configured credentials path
func Default() *FileStore {
	return NewFileStore(config.GetCredentialsPath())
}

// Path returns the session file location
func (f *FileStore) Path() string {
	return f.path
}

// Load loads the session from disk. A missing file is no session.
func (f *FileStore) Load() (*remote.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Credentials don't exist yet
		}
		return nil, err
	}

	var s remote.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save saves the session to disk
func (f *FileStore) Save(s *remote.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return err
	}
	return os.Chmod(f.path, 0600)
}

// Delete deletes the session file. Deleting a missing file is not an error.
func (f *FileStore) Delete() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
