/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

var ErrEmptyKey = errors.New("empty storage key")

type MemoryMedium struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryMedium returns an empty medium that lives as long as the process.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{
		values: make(map[string]string),
	}
}

func (m *MemoryMedium) Read(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryMedium) Write(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// FileMedium keeps one file per key under dir. Keys are path-escaped, so
// namespaced keys such as "abc/blindTestSongs" stay flat on disk.
type FileMedium struct {
	dir string
}

// NewFileMedium creates dir if needed.
func NewFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &FileMedium{dir: dir}, nil
}

func (f *FileMedium) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileMedium) Read(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	data, err := os.ReadFile(f.path(key))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", false, nil
	case err != nil:
		return "", false, err
	}

	return string(data), true, nil
}

func (f *FileMedium) Write(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return nil
}
