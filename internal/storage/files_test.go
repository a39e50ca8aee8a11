package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestFilenameShape(t *testing.T) {
	name := Filename("user", "csv", "123e4567-e89b-12d3-a456-426614174000")
	pattern := regexp.MustCompile(`^user_\d{8}_\d{6}_123e4567\.csv$`)
	if !pattern.MatchString(name) {
		t.Fatalf("filename %q does not match expected shape", name)
	}
}

func TestFilenameShortJobID(t *testing.T) {
	name := Filename("company", "json", "abc")
	pattern := regexp.MustCompile(`^company_\d{8}_\d{6}_abc\.json$`)
	if !pattern.MatchString(name) {
		t.Fatalf("filename %q does not match expected shape", name)
	}
}

func TestFullPathRejectsEscapes(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	bad := []string{"", "   ", "..", "../secret", "a/../../b"}
	for _, key := range bad {
		if _, err := store.FullPath(key); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}

	path, err := store.FullPath("user_20240101_000000_abcd1234.csv")
	if err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if filepath.Dir(path) != store.BasePath() {
		t.Fatalf("path %q escaped base %q", path, store.BasePath())
	}
}

func TestRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	f, err := store.Create("a.csv")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.Close()

	removed, err := store.Remove("a.csv")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatal("expected removal of existing file")
	}

	removed, err = store.Remove("a.csv")
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if removed {
		t.Fatal("expected no-op removal of missing file")
	}
}

func TestRemoveOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	old := filepath.Join(dir, "old.csv")
	fresh := filepath.Join(dir, "fresh.json")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	stale := time.Now().Add(-8 * 24 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := store.RemoveOlderThan(7 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("remove older than: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed: got %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old file survived cleanup")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file missing after cleanup: %v", err)
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	files := map[string]int{"a.csv": 10, "b.csv": 20, "c.json": 5}
	for name, size := range files {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalFiles != 3 {
		t.Fatalf("total files: got %d, want 3", stats.TotalFiles)
	}
	if stats.TotalBytes != 35 {
		t.Fatalf("total bytes: got %d, want 35", stats.TotalBytes)
	}
	if got := stats.ByFormat["csv"]; got.Count != 2 || got.Bytes != 30 {
		t.Fatalf("csv breakdown: got %+v", got)
	}
	if got := stats.ByFormat["json"]; got.Count != 1 || got.Bytes != 5 {
		t.Fatalf("json breakdown: got %+v", got)
	}
}
