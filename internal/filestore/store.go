// Package filestore keeps uploaded attachments on local disk: flat directory,
// collision-resistant names, no index, a time-based retention sweep.
package filestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrInvalidName    = errors.New("invalid file name")
	ErrFileTooLarge   = errors.New("file too large")
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

type Config struct {
	Dir            string
	BaseURL        string
	RetentionHours int
	MaxSizeMB      int
	AllowedTypes   []string
}

type Store struct {
	dir          string
	baseURL      string
	retention    time.Duration
	maxSizeBytes int64
	maxSizeMB    int
	allowedTypes []string
}

type SavedFile struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimetype"`
}

func New(cfg Config) *Store {
	if cfg.RetentionHours <= 0 {
		cfg.RetentionHours = 24
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	return &Store{
		dir:          cfg.Dir,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		retention:    time.Duration(cfg.RetentionHours) * time.Hour,
		maxSizeBytes: int64(cfg.MaxSizeMB) << 20,
		maxSizeMB:    cfg.MaxSizeMB,
		allowedTypes: cfg.AllowedTypes,
	}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Save checks the size ceiling and type allowlist, writes the bytes under a
// collision-resistant name and returns the URL clients (and the LLM gateway)
// should fetch. In dev-like environments image uploads come back as inline
// base64 data URLs because the local server is not reachable from outside.
func (s *Store) Save(name string, data []byte) (*SavedFile, error) {
	if int64(len(data)) > s.maxSizeBytes {
		return nil, fmt.Errorf("%w: max %dMB", ErrFileTooLarge, s.maxSizeMB)
	}

	detected := mimetype.Detect(data)
	if !s.typeAllowed(detected.String()) {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, detected.String())
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}

	stored := s.storedName(name)
	path := filepath.Join(s.dir, stored)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload failed: %w", err)
	}

	url := s.baseURL + "/api/v1/files/" + stored
	if s.devLike() && strings.HasPrefix(detected.String(), "image/") {
		url = "data:" + detected.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	return &SavedFile{
		Name:     stored,
		URL:      url,
		Size:     int64(len(data)),
		MIMEType: detected.String(),
	}, nil
}

// Resolve maps a stored name back to its path, rejecting traversal attempts
// before any filesystem access.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" ||
		strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

var contentTypeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".json": "application/json",
	".csv":  "text/csv",
}

// ContentType derives the serve content type from the extension.
func (s *Store) ContentType(name string) string {
	if ct, ok := contentTypeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Sweep deletes files older than the retention window. Per-file stat or
// remove errors are logged and skipped so one bad entry never stops the run.
func (s *Store) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list upload dir failed: %w", err)
	}

	removed := 0
	cutoff := now.Add(-s.retention)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Printf("filestore sweep stat %s failed: %v", entry.Name(), err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Printf("filestore sweep remove %s failed: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Store) typeAllowed(mime string) bool {
	if len(s.allowedTypes) == 0 {
		return true
	}
	for _, allowed := range s.allowedTypes {
		if allowed == mime {
			return true
		}
		if strings.HasSuffix(allowed, "/*") && strings.HasPrefix(mime, strings.TrimSuffix(allowed, "*")) {
			return true
		}
	}
	return false
}

// devLike reports whether the configured base URL cannot be fetched from
// outside: localhost addresses and the unconfigured placeholder domain.
func (s *Store) devLike() bool {
	return strings.Contains(s.baseURL, "localhost") ||
		strings.Contains(s.baseURL, "127.0.0.1") ||
		strings.Contains(s.baseURL, "your-domain") ||
		s.baseURL == ""
}

func (s *Store) storedName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if trimmed := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "_"), "_"); trimmed != "" {
		ext = "." + trimmed
	} else {
		ext = ""
	}
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "file"
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s%s", base, time.Now().UnixMilli(), token, ext)
}
