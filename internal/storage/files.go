// Package storage manages the shared directory generated data files live in.
// Workers write into it, the API reads from it for downloads, and the cleanup
// task reclaims old files. Concurrent deletion must be tolerated by readers.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore persists generated files onto the local filesystem.
type FileStore struct {
	basePath string
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name       string    `json:"filename"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	Format     string    `json:"format"`
}

// Stats summarizes storage usage for the stats endpoint.
type Stats struct {
	BasePath   string                    `json:"storage_path"`
	TotalFiles int                       `json:"total_files"`
	TotalBytes int64                     `json:"total_size_bytes"`
	ByFormat   map[string]FormatBreakdown `json:"formats"`
}

// FormatBreakdown is a per-extension slice of the storage stats.
type FormatBreakdown struct {
	Count int   `json:"count"`
	Bytes int64 `json:"size"`
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	return s.basePath
}

// Filename derives the deterministic name a job's output file is stored
// under. Content type is recoverable from the extension; the rest is opaque.
func Filename(dataType, format, jobID string) string {
	ts := time.Now().UTC().Format("20060102_150405")
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s_%s.%s", dataType, ts, short, format)
}

// FullPath resolves a stored name to an absolute path, rejecting keys that
// would escape the storage root.
func (s *FileStore) FullPath(name string) (string, error) {
	clean, err := sanitizeKey(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}

// Create opens a new file for the sink to stream into.
func (s *FileStore) Create(name string) (*os.File, error) {
	path, err := s.FullPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("storage: create file: %w", err)
	}
	return f, nil
}

// Open opens a stored file for download. Returns fs.ErrNotExist when the
// file was already reclaimed.
func (s *FileStore) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := s.FullPath(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// Remove deletes a stored file. Returns false when the file did not exist;
// callers treat that as a best-effort success.
func (s *FileStore) Remove(name string) (bool, error) {
	path, err := s.FullPath(name)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: remove file: %w", err)
	}
	return true, nil
}

// RemoveOlderThan deletes files whose modification time is older than
// maxAge, returning the number removed. Files disappearing mid-scan are not
// an error.
func (s *FileStore) RemoveOlderThan(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("storage: scan: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.basePath, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Stats walks the storage root and aggregates usage by file extension.
func (s *FileStore) Stats() (*Stats, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: scan: %w", err)
	}
	stats := &Stats{
		BasePath: s.basePath,
		ByFormat: make(map[string]FormatBreakdown),
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.TotalFiles++
		stats.TotalBytes += info.Size()
		ext := strings.TrimPrefix(filepath.Ext(e.Name()), ".")
		b := stats.ByFormat[ext]
		b.Count++
		b.Bytes += info.Size()
		stats.ByFormat[ext] = b
	}
	return stats, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
