package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// tempName returns a hidden sibling of path that cannot collide with a
// concurrent writer's temp file.
func tempName(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"-"+uuid.New().String()+".tmp")
}

// writeAtomic writes a file through fn into a temp file and renames it over
// path, so readers see either the old or the new content. The file is
// stamped with modTime, or with now when modTime is zero.
func writeAtomic(path string, now, modTime time.Time, fn func(w io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	tmp := tempName(path)
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, os.FileMode(0o666&^umask()))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = fn(f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if modTime.IsZero() {
		modTime = now
	}
	if err = os.Chtimes(tmp, now, modTime); err != nil {
		return fmt.Errorf("failed to set times on %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// replaceFile atomically replaces path with data.
func replaceFile(path string, data []byte, now, modTime time.Time) error {
	return writeAtomic(path, now, modTime, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
