package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects on the local filesystem for development. The
// relative object path is the deletion handle.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore returns a Store rooted at dir whose objects are served under baseURL.
func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskStore) Backend() string { return "disk" }

// Dir returns the root directory of the store.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

func (s *DiskStore) Put(_ context.Context, key, _ string, body []byte) (Object, error) {
	full, err := s.resolve(key)
	if err != nil {
		return Object{}, err
	}
	if err := writeBytesToFile(full, body); err != nil {
		return Object{}, err
	}
	return Object{URL: s.baseURL + "/" + strings.TrimPrefix(key, "/"), PublicID: key}, nil
}

// Delete removes the object. A missing file is not an error.
func (s *DiskStore) Delete(_ context.Context, publicID string) error {
	full, err := s.resolve(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func writeBytesToFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}
