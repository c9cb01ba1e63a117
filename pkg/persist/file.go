package persist

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// File is a durable Backend that keeps one file per key inside a directory.
// Keys are path-escaped into file names, so "STORE/cart" is stored as
// "STORE%2Fcart". Writes go through a temporary file and a rename.
type File struct {
	dir  string
	perm os.FileMode
	mu   sync.Mutex
}

// FileOption configures a File backend.
type FileOption func(*fileConfig)

type fileConfig struct {
	perm os.FileMode
}

// WithFileMode sets the permission bits of record files. Default: 0600.
func WithFileMode(perm os.FileMode) FileOption {
	return func(c *fileConfig) {
		c.perm = perm
	}
}

// NewFile opens (creating if needed) a file backend rooted at dir.
func NewFile(dir string, opts ...FileOption) (*File, error) {
	cfg := &fileConfig{perm: 0o600}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create %s: %w", dir, err)
	}
	return &File{dir: dir, perm: cfg.perm}, nil
}

// Dir returns the backend's root directory.
func (f *File) Dir() string {
	return f.dir
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key))
}

// Get implements Backend.
func (f *File) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("persist: read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Backend.
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("persist: write %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("persist: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: write %q: %w", key, err)
	}
	if err := os.Chmod(tmpName, f.perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: write %q: %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist: write %q: %w", key, err)
	}
	return nil
}

// Delete implements Deleter.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("persist: delete %q: %w", key, err)
	}
	return nil
}

// Keys implements Lister.
func (f *File) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("persist: list %s: %w", f.dir, err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		key, err := url.PathUnescape(e.Name())
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
