package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s
}

func TestSave_GeneratesNameKeepsExtension(t *testing.T) {
	s := newTestStorage(t)

	path, err := s.Save("Vacation Photo.JPG", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasPrefix(path, PublicPrefix) {
		t.Errorf("path = %q, want %q prefix", path, PublicPrefix)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("path = %q, want lowercased .jpg extension", path)
	}
	// The client-chosen name must not appear anywhere in the stored name.
	if strings.Contains(path, "Vacation") {
		t.Errorf("path %q leaks the original filename", path)
	}

	name := strings.TrimPrefix(path, PublicPrefix)
	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("stored contents = %q", data)
	}
}

func TestSave_UniqueNamesForSameInput(t *testing.T) {
	s := newTestStorage(t)

	p1, err := s.Save("a.png", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	p2, err := s.Save("a.png", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p1 == p2 {
		t.Error("two uploads of the same filename collided")
	}
}

func TestListAndRemove(t *testing.T) {
	s := newTestStorage(t)

	files, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected empty storage, got %d files", len(files))
	}

	path, err := s.Save("a.png", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	name := strings.TrimPrefix(path, PublicPrefix)

	files, err = s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 || files[0].Name != name {
		t.Errorf("files = %+v, want one entry named %q", files, name)
	}

	if err := s.Remove(name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove(name); !errors.Is(err, ErrNotFound) {
		t.Errorf("second remove: err = %v, want ErrNotFound", err)
	}
}

func TestRemove_RejectsTraversal(t *testing.T) {
	s := newTestStorage(t)

	// A victim file outside the storage dir must be unreachable by name.
	outside := filepath.Join(filepath.Dir(s.Dir()), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0644); err != nil {
		t.Fatalf("write victim file: %v", err)
	}

	for _, name := range []string{
		"",
		"../victim.txt",
		"a/../../victim.txt",
		"..",
	} {
		if err := s.Remove(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Remove(%q): err = %v, want ErrNotFound", name, err)
		}
	}

	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside storage dir was touched: %v", err)
	}
}
