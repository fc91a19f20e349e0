package deviceid

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Store.Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

// Store is a small local key-value store for install-scoped values.
type Store interface {
	Get(key string) (string, error) // returns ErrNotFound if the key is absent
	Set(key, value string) error
	Delete(key string) error
}

// diskStore keeps every key in a single JSON object under the XDG data directory.
type diskStore struct {
	mu   sync.Mutex
	path string // full path to identity.json
}

// NewDiskStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/reelwatch/identity.json or ~/.local/share/reelwatch/identity.json
func NewDiskStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "identity.json")}, nil
}

// dataDir returns the reelwatch-specific XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "reelwatch"), nil
}

func (d *diskStore) Get(key string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	values, err := d.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (d *diskStore) Set(key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	values, err := d.load()
	if err != nil {
		return err
	}
	values[key] = value
	return d.save(values)
}

func (d *diskStore) Delete(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	values, err := d.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return d.save(values)
}

// load reads the backing file. A missing file is an empty store.
func (d *diskStore) load() (map[string]string, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read identity state: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse identity state: %w", err)
	}
	return values, nil
}

// save writes values atomically via a temp file + os.Rename.
func (d *diskStore) save(values map[string]string) (err error) {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to persist identity state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "identity-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist identity state: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist identity state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist identity state: %w", err)
	}
	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist identity state: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
