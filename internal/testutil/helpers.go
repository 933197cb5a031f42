// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Stamp is the modification time WriteFiles gives every file.
var Stamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// WriteFiles creates name/content pairs under dir, making parent
// directories as needed, and returns dir.
func WriteFiles(t *testing.T, dir string, kv ...string) string {
	t.Helper()
	if len(kv)%2 != 0 {
		t.Fatalf("WriteFiles: odd number of arguments")
	}
	for i := 0; i < len(kv); i += 2 {
		path := filepath.Join(dir, filepath.FromSlash(kv[i]))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", kv[i], err)
		}
		if err := os.WriteFile(path, []byte(kv[i+1]), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", kv[i], err)
		}
		if err := os.Chtimes(path, Stamp, Stamp); err != nil {
			t.Fatalf("Failed to set times on %s: %v", kv[i], err)
		}
	}
	return dir
}

// ReadFile returns the content of dir/name, or "" with ok=false when it
// does not exist.
func ReadFile(t *testing.T, dir, name string) (string, bool) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return "", false
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return string(data), true
}

// BootDir returns a fresh temp directory holding the given boot files.
func BootDir(t *testing.T, kv ...string) string {
	t.Helper()
	return WriteFiles(t, t.TempDir(), kv...)
}
