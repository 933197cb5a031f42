package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/brand"
	"grimm.is/bootctl/internal/clock"
)

const bundleWarning = "Do not edit the content of this archive; the line above is a hash of " +
	"the content which will not match after manual editing. Please use the " +
	"bootctl tool to manipulate stored boot configurations"

// hashLen is the length of a hex SHA1 digest.
const hashLen = 40

// bundleComment is the archive comment identifying a bundle and its hash.
func bundleComment(hash string) string {
	return brand.ArchivePrefix + hash + "\n\n" + bundleWarning
}

// parseComment extracts the hash from a bundle comment.
func parseComment(comment string) (string, bool) {
	rest, ok := strings.CutPrefix(comment, brand.ArchivePrefix)
	if !ok || len(rest) < hashLen {
		return "", false
	}
	hash := rest[:hashLen]
	if strings.Trim(hash, "0123456789abcdef") != "" {
		return "", false
	}
	return hash, true
}

// writeBundle stores files in a new archive at path. Member times that are
// unset take now.
func writeBundle(path string, files bootcfg.FileSet, hash string, now time.Time) error {
	return writeAtomic(path, now, now, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		if err := zw.SetComment(bundleComment(hash)); err != nil {
			return err
		}
		for _, f := range files {
			mod := f.ModTime
			if mod.IsZero() {
				mod = now
			}
			fw, err := zw.CreateHeader(&zip.FileHeader{
				Name:     f.Name,
				Method:   zip.Deflate,
				Modified: clock.ArchiveTime(mod),
			})
			if err != nil {
				return fmt.Errorf("failed to add %s: %w", f.Name, err)
			}
			if _, err := fw.Write(f.Content); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.Name, err)
			}
		}
		return zw.Close()
	})
}

// bundle is the decoded content of an archive.
type bundle struct {
	Hash      string
	Files     bootcfg.FileSet
	Timestamp time.Time
}

// readBundle opens an archive and checks its comment. Member contents are
// only read when withFiles is set; the hash and timestamp come from the
// archive directory.
func readBundle(path string, withFiles bool) (*bundle, error) {
	zr, err := zip.OpenReader(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, &BundleError{Path: path, Msg: err.Error()}
	}
	defer zr.Close()

	hash, ok := parseComment(zr.Comment)
	if !ok {
		return nil, &BundleError{Path: path, Msg: "missing or malformed hash comment"}
	}
	b := &bundle{Hash: hash, Timestamp: time.Unix(0, 0).UTC()}
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if m := zf.Modified; m.After(b.Timestamp) {
			b.Timestamp = m
		}
		if !withFiles {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in %s: %w", zf.Name, path, err)
		}
		var buf bytes.Buffer
		_, err = io.Copy(&buf, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s in %s: %w", zf.Name, path, err)
		}
		b.Files = append(b.Files, bootcfg.File{
			Name:    bootcfg.CleanName(zf.Name),
			Content: buf.Bytes(),
			ModTime: zf.Modified,
		})
	}
	return b, nil
}
