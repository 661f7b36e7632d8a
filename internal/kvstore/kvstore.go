// Package kvstore is the local key-value store for settings, the cached
// developer profile and the cached token pair. Values are JSON documents
// stored one file per key.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/peterbourgon/diskv/v3"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store persists JSON values by key.
type Store struct {
	d *diskv.Diskv
}

// Open creates (if needed) and opens the store rooted at dir.
func Open(dir string) (*Store, error) {
	tmp := filepath.Join(dir, ".tmp")
	if err := os.MkdirAll(tmp, 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		TempDir:      tmp,
		FilePerm:     0o600,
		PathPerm:     0o700,
		CacheSizeMax: 64 * 1024,
	})}, nil
}

// Get decodes the value stored under key into v. It reports false when the
// key is absent.
func (s *Store) Get(key string, v any) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	data, err := s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("corrupt value for %s: %w", key, err)
	}
	return true, nil
}

// Set replaces the value under key. The write goes through a temp file and a
// rename, so readers never observe a partial value.
func (s *Store) Set(key string, v any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", key, err)
	}
	if err := s.d.Write(key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid store key %q", key)
	}
	return nil
}
