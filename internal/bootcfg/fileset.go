package bootcfg

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"
)

// File is one member of a configuration.
type File struct {
	// Name is the path relative to the boot partition, slash separated.
	Name    string
	Content []byte
	ModTime time.Time
}

// Source supplies the files a configuration is parsed from. Open returns an
// error wrapping fs.ErrNotExist for absent files.
type Source interface {
	Open(name string) (File, error)
}

// DirSource reads files from a directory on disk.
type DirSource string

// Open implements Source.
func (d DirSource) Open(name string) (File, error) {
	p := filepath.Join(string(d), filepath.FromSlash(name))
	info, err := os.Stat(p)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return File{}, err
	}
	return File{Name: name, Content: data, ModTime: info.ModTime()}, nil
}

// FileSet is an ordered collection of files. The order is the order in
// which the files were first read, which is also the hashing order.
type FileSet []File

// Open implements Source.
func (s FileSet) Open(name string) (File, error) {
	if f, ok := s.Get(name); ok {
		return f, nil
	}
	return File{}, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}

// Get returns the named member.
func (s FileSet) Get(name string) (File, bool) {
	name = CleanName(name)
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

// Names returns member names in order.
func (s FileSet) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// With returns a copy with f added, or replacing the member of the same name.
func (s FileSet) With(f File) FileSet {
	f.Name = CleanName(f.Name)
	out := make(FileSet, 0, len(s)+1)
	replaced := false
	for _, g := range s {
		if g.Name == f.Name {
			out = append(out, f)
			replaced = true
			continue
		}
		out = append(out, g)
	}
	if !replaced {
		out = append(out, f)
	}
	return out
}

// Hash returns the hex SHA-1 of every member's content, in order. Names and
// timestamps do not contribute.
func (s FileSet) Hash() string {
	h := sha1.New()
	for _, f := range s {
		h.Write(f.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Timestamp returns the latest modification time among the members.
func (s FileSet) Timestamp() time.Time {
	var latest time.Time
	for _, f := range s {
		if f.ModTime.After(latest) {
			latest = f.ModTime
		}
	}
	return latest
}

// Equal reports whether both sets hold the same names with the same content.
func (s FileSet) Equal(other FileSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, f := range s {
		g, ok := other.Get(f.Name)
		if !ok || !bytes.Equal(f.Content, g.Content) {
			return false
		}
	}
	return true
}

// CleanName normalises a member name: slash separated, relative, no dot
// segments.
func CleanName(name string) string {
	name = path.Clean("/" + filepath.ToSlash(name))
	return name[1:]
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
