package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harborfs/file-manager/internal/models"
)

// Local stores blobs as plain files under a root directory, one file per
// storage key.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Kind() models.StorageType { return models.StorageLocal }

// Root returns the directory blobs live under.
func (l *Local) Root() string { return l.root }

// Path returns the physical path for a key, rejecting keys that would
// escape the root.
func (l *Local) Path(key string) (string, error) {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.root, key), nil
}

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	path, err := l.Path(key)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create blob file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return f.Close()
}

func (l *Local) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := l.Path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	path, err := l.Path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
