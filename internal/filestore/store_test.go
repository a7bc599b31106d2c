package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := New(Config{Dir: t.TempDir(), MaxSizeMB: 1})

	_, err := store.Save("big.bin", make([]byte, 2<<20))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
	if !strings.Contains(err.Error(), "1MB") {
		t.Errorf("error should name the limit, got %q", err.Error())
	}
}

func TestSaveEnforcesTypeAllowlist(t *testing.T) {
	store := New(Config{Dir: t.TempDir(), AllowedTypes: []string{"image/*"}})

	if _, err := store.Save("note.txt", []byte("plain text, not an image")); !errors.Is(err, ErrTypeNotAllowed) {
		t.Fatalf("err = %v, want ErrTypeNotAllowed", err)
	}

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 32)...)
	saved, err := store.Save("pic.png", png)
	if err != nil {
		t.Fatalf("save png: %v", err)
	}
	if saved.MIMEType != "image/png" {
		t.Errorf("mimetype = %q, want image/png", saved.MIMEType)
	}
}

func TestSaveStoredNameAndDevURL(t *testing.T) {
	dir := t.TempDir()
	store := New(Config{Dir: dir, BaseURL: "http://localhost:8080"})

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 32)...)
	saved, err := store.Save("my photo (1).png", png)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if !strings.HasPrefix(saved.Name, "my_photo_1_") || !strings.HasSuffix(saved.Name, ".png") {
		t.Errorf("stored name = %q", saved.Name)
	}
	if _, err := os.Stat(filepath.Join(dir, saved.Name)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
	// Local servers are unreachable from the gateway, so images inline.
	if !strings.HasPrefix(saved.URL, "data:image/png;base64,") {
		t.Errorf("dev image url = %q, want a data URL", saved.URL)
	}

	public := New(Config{Dir: dir, BaseURL: "https://chat.example.com/"})
	saved, err = public.Save("pic.png", png)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(saved.URL, "https://chat.example.com/api/v1/files/") {
		t.Errorf("public url = %q", saved.URL)
	}
}

func TestStoredNameSanitizesExtension(t *testing.T) {
	store := New(Config{Dir: t.TempDir()})

	name := store.storedName("weird name.p$n g")
	if !strings.HasPrefix(name, "weird_name_") {
		t.Errorf("stored name = %q", name)
	}
	if !strings.HasSuffix(name, ".p_n_g") {
		t.Errorf("stored name = %q, want a sanitized extension", name)
	}
	if strings.ContainsAny(name, " $") {
		t.Errorf("stored name %q carries raw unsafe characters", name)
	}

	if name := store.storedName("dotfile."); strings.HasSuffix(name, ".") {
		t.Errorf("stored name = %q, want no dangling dot", name)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := New(Config{Dir: t.TempDir()})

	for _, name := range []string{"", "../../etc/passwd", "a/b.png", `a\b.png`, "..", "x..y"} {
		if _, err := store.Resolve(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Resolve(%q) err = %v, want ErrInvalidName", name, err)
		}
	}

	path, err := store.Resolve("report_123.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(path) != "report_123.pdf" {
		t.Errorf("path = %q", path)
	}
}

func TestContentType(t *testing.T) {
	store := New(Config{Dir: t.TempDir()})

	tests := []struct {
		name string
		want string
	}{
		{"a.png", "image/png"},
		{"a.PDF", "application/pdf"},
		{"a.bin", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}
	for _, tc := range tests {
		if got := store.ContentType(tc.name); got != tc.want {
			t.Errorf("ContentType(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSweepRemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(Config{Dir: dir, RetentionHours: 1})

	old := filepath.Join(dir, "old.txt")
	fresh := filepath.Join(dir, "fresh.txt")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Sweep(time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired file should be gone")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file should survive the sweep")
	}
}

func TestSweepMissingDirIsNoop(t *testing.T) {
	store := New(Config{Dir: filepath.Join(t.TempDir(), "never-created")})
	removed, err := store.Sweep(time.Now())
	if err != nil || removed != 0 {
		t.Errorf("sweep on missing dir = (%d, %v), want (0, nil)", removed, err)
	}
}
