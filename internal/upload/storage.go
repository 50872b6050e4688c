// Package upload stores uploaded binaries on local disk under generated
// unique names and hands back stable reference paths. File contents are
// opaque to the rest of the system; only the reference string travels.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a named file does not exist in storage.
var ErrNotFound = errors.New("file not found")

// PublicPrefix is the URL path under which stored files are served.
const PublicPrefix = "/files/"

// Storage is a disk-backed file store. Names are generated, never
// client-chosen, so the directory holds nothing an uploader picked.
type Storage struct {
	dir string
}

// NewStorage creates the upload directory if needed and returns a Storage
// over it.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the backing directory, used to mount the static file route.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes the contents of r under a fresh unique name, keeping only the
// extension of originalName. Returns the stable reference path to store on
// the owning record.
func (s *Storage) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return PublicPrefix + name, nil
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// List returns all stored files.
func (s *Storage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Path: PublicPrefix + e.Name()})
	}
	return files, nil
}

// Remove deletes a stored file by name. Returns ErrNotFound if the name
// does not exist. Names containing path separators or traversal are
// rejected outright.
func (s *Storage) Remove(name string) error {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return ErrNotFound
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}
