package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/0xAcousticbridge/GAID/internal/cache"
)

// Storage is a named string record store
type Storage interface {
	// GetItem returns the record and whether it exists
	GetItem(name string) (string, bool, error)
	SetItem(name, value string) error
	RemoveItem(name string) error
}

// FileStorage keeps each record in <dir>/<name>.json
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *FileStorage) GetItem(name string) (string, bool, error) {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// SetItem writes through a temp file and rename so readers never see a partial record
func (f *FileStorage) SetItem(name, value string) error {
	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path(name))
}

func (f *FileStorage) RemoveItem(name string) error {
	err := os.Remove(f.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryStorage is a process-local Storage
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[name]
	return v, ok, nil
}

func (m *MemoryStorage) SetItem(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

// KV is the subset of the redis client RedisStorage needs
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStorage keeps records under <prefix><name>, so one server can hold
// partitions for several installs
type RedisStorage struct {
	kv      KV
	prefix  string
	timeout time.Duration
}

// NewRedisStorage stores records in kv under prefix
func NewRedisStorage(kv KV, prefix string) *RedisStorage {
	return &RedisStorage{kv: kv, prefix: prefix, timeout: 3 * time.Second}
}

func (r *RedisStorage) GetItem(name string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.kv.Get(ctx, r.prefix+name)
	if cache.IsMiss(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisStorage) SetItem(name, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.kv.Set(ctx, r.prefix+name, value)
}

func (r *RedisStorage) RemoveItem(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.kv.Del(ctx, r.prefix+name)
}
