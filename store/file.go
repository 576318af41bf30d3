package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// File is a write-through Store backed by a small TOML file. Every Set
// rewrites the file; Clear removes it.
type File struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFile loads the store at path, tolerating a missing file.
func NewFile(path string) (*File, error) {
	f := &File{path: path, data: map[string]string{}}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session store")
	}
	if err := toml.Unmarshal(raw, &f.data); err != nil {
		return nil, errors.Wrapf(err, "parse session store %s", path)
	}
	return f, nil
}

func (f *File) Get(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key]
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f.save()
}

func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = map[string]string{}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "clear session store")
	}
	return nil
}

func (f *File) save() error {
	raw, err := toml.Marshal(f.data)
	if err != nil {
		return errors.Wrap(err, "encode session store")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(err, "create session store directory")
	}
	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return errors.Wrap(err, "write session store")
	}
	return nil
}
