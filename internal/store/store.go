// Package store saves, restores and compares whole boot configurations.
//
// Stored configurations are ZIP bundles in the store directory, one per
// name. Each bundle holds the configuration's files at their relative paths
// and records the SHA1 of their content in the archive comment, which makes
// it cheap to tell which bundle matches the live configuration.
//
// Files are always replaced by writing a temp file and renaming it over the
// destination, so no file is ever seen half written. Loading a bundle
// replaces several files one after the other; an interruption between two
// renames can leave a mix of old and new files, each of them intact.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/brand"
	"grimm.is/bootctl/internal/clock"
	"grimm.is/bootctl/internal/config"
	"grimm.is/bootctl/internal/logging"
	"grimm.is/bootctl/internal/resolve"
	"grimm.is/bootctl/internal/setting"
)

const (
	bundleExt    = ".zip"
	backupPrefix = "backup-"
)

// Store manages the live configuration and the stored bundles.
type Store struct {
	cfg    *config.Config
	board  bootcfg.Context
	engine *resolve.Engine
	clock  clock.Clock
	logger *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for backup names and written files.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithEngine sets the resolution engine.
func WithEngine(e *resolve.Engine) Option {
	return func(s *Store) { s.engine = e }
}

// New returns a store for the boot partition described by cfg. The
// configuration is read-only for the lifetime of the store.
func New(cfg *config.Config, board bootcfg.Context, opts ...Option) *Store {
	s := &Store{
		cfg:    cfg.Clone(),
		board:  board,
		clock:  &clock.RealClock{},
		logger: logging.WithComponent("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = resolve.New(nil)
	}
	return s
}

// Engine returns the resolution engine.
func (s *Store) Engine() *resolve.Engine {
	return s.engine
}

// Board returns the hardware context configurations are resolved for.
func (s *Store) Board() bootcfg.Context {
	return s.board
}

// Dir returns the bundle directory.
func (s *Store) Dir() string {
	return s.cfg.StoreDir()
}

// Writable returns the name of the file Update rewrites.
func (s *Store) Writable() string {
	return s.cfg.ConfigWrite
}

func (s *Store) bundlePath(name string) string {
	return filepath.Join(s.Dir(), name+bundleExt)
}

func (s *Store) bootPath(name string) string {
	return filepath.Join(s.cfg.BootPath, filepath.FromSlash(name))
}

// ValidateName checks that name can be used for a bundle.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &InvalidNameError{Name: name, Reason: "empty"}
	case strings.ContainsAny(name, `/\`):
		return &InvalidNameError{Name: name, Reason: "contains a path separator"}
	case strings.HasPrefix(name, "."):
		return &InvalidNameError{Name: name, Reason: "starts with a dot"}
	case len(name)+len(bundleExt) > 255:
		return &InvalidNameError{Name: name, Reason: "too long"}
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return &InvalidNameError{Name: name, Reason: "contains control characters"}
		}
	}
	return nil
}

// Current reads the live configuration from the boot partition.
func (s *Store) Current() (*Configuration, error) {
	return s.load("", bootcfg.DirSource(s.cfg.BootPath))
}

// Default returns the empty configuration the firmware boots without a
// config file.
func (s *Store) Default() *Configuration {
	return s.defaultConfiguration()
}

// Get reads a stored configuration.
func (s *Store) Get(name string) (*Configuration, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	b, err := readBundle(s.bundlePath(name), true)
	if err != nil {
		var be *BundleError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &be) {
			return nil, &NotFoundError{Name: name}
		}
		return nil, err
	}
	c, err := s.load(name, b.Files)
	if err != nil {
		return nil, fmt.Errorf("stored configuration %s: %w", name, err)
	}
	// Every member is restored on load, including files this board does
	// not read.
	c.Files, c.Hash, c.Timestamp = b.Files, b.Hash, b.Timestamp
	return c, nil
}

// Exists reports whether a bundle is stored under name.
func (s *Store) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	_, err := readBundle(s.bundlePath(name), false)
	return err == nil
}

// Save stores the live configuration under name.
func (s *Store) Save(name string, overwrite bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !overwrite && s.Exists(name) {
		return &AlreadyExistsError{Name: name}
	}
	current, err := s.Current()
	if err != nil {
		return err
	}
	if err := s.store(name, current); err != nil {
		return err
	}
	s.logger.Audit("save", name, map[string]any{"hash": current.Hash, "files": len(current.Files)})
	return nil
}

func (s *Store) store(name string, c *Configuration) error {
	if err := writeBundle(s.bundlePath(name), c.Files, c.Hash, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// Load replaces the live configuration with a stored one. With backup set
// and backups enabled in the tool configuration, a live configuration that
// matches no bundle is saved under a generated name first; that name is
// returned.
func (s *Store) Load(name string, backup bool) (string, error) {
	target, err := s.Get(name)
	if err != nil {
		return "", err
	}
	current, err := s.Current()
	if err != nil {
		return "", err
	}

	var saved string
	if backup && s.cfg.Backup {
		if saved, err = s.backupIfUnsaved(current); err != nil {
			return "", err
		}
	}
	if target.Hash == current.Hash {
		s.logger.Info("configuration already active", "name", name)
		return saved, nil
	}

	// The root file is replaced after every file it may include, and stale
	// files are removed last, so that a firmware switching boot directories
	// through os_prefix sees a consistent set for as long as possible.
	root := bootcfg.CleanName(s.cfg.ConfigRoot)
	ordered := make(bootcfg.FileSet, 0, len(target.Files))
	var rootFile *bootcfg.File
	for i := range target.Files {
		if target.Files[i].Name == root {
			rootFile = &target.Files[i]
			continue
		}
		ordered = append(ordered, target.Files[i])
	}
	if rootFile != nil {
		ordered = append(ordered, *rootFile)
	}
	for _, f := range ordered {
		if err := replaceFile(s.bootPath(f.Name), f.Content, s.clock.Now(), f.ModTime); err != nil {
			return saved, err
		}
	}
	for _, f := range current.Files {
		if _, ok := target.Files.Get(f.Name); ok {
			continue
		}
		if err := os.Remove(s.bootPath(f.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return saved, fmt.Errorf("failed to remove %s: %w", f.Name, err)
		}
	}

	s.markRebootRequired()
	s.logger.Audit("load", name, map[string]any{"hash": target.Hash, "backup": saved})
	return saved, nil
}

// Remove deletes a stored configuration. With force, a missing name is not
// an error.
func (s *Store) Remove(name string, force bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !s.Exists(name) {
		if force {
			return nil
		}
		return &NotFoundError{Name: name}
	}
	if err := os.Remove(s.bundlePath(name)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	s.logger.Audit("remove", name, nil)
	return nil
}

// Rename moves a stored configuration to a new name. With force, an
// existing destination is replaced.
func (s *Store) Rename(name, to string, force bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateName(to); err != nil {
		return err
	}
	if !s.Exists(name) {
		return &NotFoundError{Name: name}
	}
	if name == to {
		return nil
	}
	if !force && s.Exists(to) {
		return &AlreadyExistsError{Name: to}
	}
	if err := os.Rename(s.bundlePath(name), s.bundlePath(to)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", name, err)
	}
	s.logger.Audit("rename", name, map[string]any{"to": to})
	return nil
}

// Entry describes one stored configuration.
type Entry struct {
	Name      string `json:"name" yaml:"name"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Active    bool   `json:"active" yaml:"active"`
}

// List returns the stored configurations sorted by name. Active is set on
// bundles whose hash matches the live configuration.
func (s *Store) List() ([]Entry, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	return s.list(current.Hash)
}

func (s *Store) list(hash string) ([]Entry, error) {
	dirents, err := os.ReadDir(s.Dir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	var out []Entry
	for _, de := range dirents {
		name, ok := strings.CutSuffix(de.Name(), bundleExt)
		if !ok || de.IsDir() || ValidateName(name) != nil {
			continue
		}
		b, err := readBundle(s.bundlePath(name), false)
		if err != nil {
			s.logger.Debug("skipping archive", "name", de.Name(), "error", err)
			continue
		}
		out = append(out, Entry{
			Name:      name,
			Timestamp: b.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			Active:    b.Hash == hash,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Active returns the name of the first bundle matching the live
// configuration, or "" when it is unsaved.
func (s *Store) Active() (string, error) {
	entries, err := s.List()
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.Active {
			return e.Name, nil
		}
	}
	return "", nil
}

// Resolve evaluates a configuration for the store's board.
func (s *Store) Resolve(c *Configuration) (*resolve.Resolved, error) {
	return s.engine.Resolve(c.Tree, s.board)
}

// Side returns the configuration a diff side names: "" is the live
// configuration, "default" the empty one, anything else a bundle.
func (s *Store) Side(name string) (*Configuration, error) {
	switch name {
	case "":
		return s.Current()
	case "default":
		if !s.Exists(name) {
			return s.Default(), nil
		}
	}
	return s.Get(name)
}

// Diff compares the settings of two configurations named as in Side.
func (s *Store) Diff(left, right string) ([]resolve.Change, error) {
	sides := [2]*resolve.Resolved{}
	for i, name := range []string{left, right} {
		c, err := s.Side(name)
		if err != nil {
			return nil, err
		}
		if sides[i], err = s.Resolve(c); err != nil {
			return nil, err
		}
	}
	return resolve.Diff(sides[0], sides[1]), nil
}

// UpdateResult reports what Update did.
type UpdateResult struct {
	// Backup is the name the unsaved live configuration was stored under.
	Backup string
	// Written lists the files that were rewritten. It is empty when the
	// configuration already had the requested values.
	Written []string
}

// Update changes settings of the live configuration by rewriting the
// writable file. A nil value resets a setting. With backup set, an unsaved
// live configuration is stored first, as in Load. Files other than the
// writable one are never written.
func (s *Store) Update(changes map[string]setting.Value, backup bool) (UpdateResult, error) {
	var result UpdateResult
	current, err := s.Current()
	if err != nil {
		return result, err
	}
	policy := resolve.PolicyDelete
	if s.cfg.CommentLines {
		policy = resolve.PolicyComment
	}
	updated, err := s.engine.Apply(current.Tree, s.board, changes, resolve.Options{
		Writable: s.cfg.ConfigWrite,
		Policy:   policy,
		Template: s.cfg.ConfigTemplate,
	})
	if err != nil {
		return result, err
	}

	writable := bootcfg.CleanName(s.cfg.ConfigWrite)
	var pending bootcfg.FileSet
	for _, f := range updated.Render() {
		if old, ok := current.Tree.Files.Get(f.Name); ok && bytes.Equal(old.Content, f.Content) {
			continue
		}
		if f.Name != writable {
			s.logger.Warn("not rewriting read-only file", "file", f.Name)
			continue
		}
		pending = append(pending, f)
	}
	if len(pending) == 0 {
		s.logger.Info("configuration unchanged")
		return result, nil
	}

	if backup && s.cfg.Backup {
		if result.Backup, err = s.backupIfUnsaved(current); err != nil {
			return result, err
		}
	}
	for _, f := range pending {
		if err := replaceFile(s.bootPath(f.Name), f.Content, s.clock.Now(), f.ModTime); err != nil {
			return result, err
		}
		result.Written = append(result.Written, f.Name)
	}
	s.markRebootRequired()

	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)
	s.logger.Audit("update", s.cfg.ConfigWrite, map[string]any{"settings": strings.Join(names, ","), "backup": result.Backup})
	return result, nil
}

// backupIfUnsaved stores c under a generated name unless a bundle already
// holds it.
func (s *Store) backupIfUnsaved(c *Configuration) (string, error) {
	entries, err := s.list(c.Hash)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.Active {
			return "", nil
		}
	}

	name := s.backupName(entries)
	if err := s.store(name, c); err != nil {
		return "", err
	}
	s.logger.Info("backed up configuration", "name", name)
	s.pruneBackups()
	return name, nil
}

// backupName returns "backup-<stamp>", with a numeric suffix when a backup
// was already taken in the same second.
func (s *Store) backupName(entries []Entry) string {
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		taken[e.Name] = true
	}
	base := backupPrefix + clock.BackupStamp(s.clock.Now())
	name := base
	for n := 1; taken[name]; n++ {
		name = base + "-" + strconv.Itoa(n)
	}
	return name
}

// pruneBackups removes the oldest automatic backups beyond MaxBackups.
// Bundles saved under other names are never pruned.
func (s *Store) pruneBackups() {
	if s.cfg.MaxBackups <= 0 {
		return
	}
	entries, err := s.list("")
	if err != nil {
		return
	}
	var backups []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name, backupPrefix) {
			backups = append(backups, e.Name)
		}
	}
	if len(backups) <= s.cfg.MaxBackups {
		return
	}
	sort.Slice(backups, func(i, j int) bool { return backupLess(backups[i], backups[j]) })
	for _, name := range backups[:len(backups)-s.cfg.MaxBackups] {
		if err := os.Remove(s.bundlePath(name)); err != nil {
			s.logger.Warn("failed to prune backup", "name", name, "error", err)
			continue
		}
		s.logger.Debug("pruned backup", "name", name)
	}
}

// backupLess orders backup names by stamp, then by collision suffix.
func backupLess(a, b string) bool {
	split := func(name string) (string, int) {
		stamp := strings.TrimPrefix(name, backupPrefix)
		if len(stamp) > len("20060102-150405") {
			n, err := strconv.Atoi(stamp[len("20060102-150405")+1:])
			if err == nil {
				return stamp[:len("20060102-150405")], n
			}
		}
		return stamp, 0
	}
	sa, na := split(a)
	sb, nb := split(b)
	if sa != sb {
		return sa < sb
	}
	return na < nb
}

// markRebootRequired touches the distribution's reboot-required markers.
// Failures are logged; the configuration change itself has succeeded.
func (s *Store) markRebootRequired() {
	if path := s.cfg.RebootRequired; path != "" {
		if err := os.WriteFile(path, []byte("*** System restart required ***\n"), 0o644); err != nil {
			s.logger.Warn("failed to write reboot marker", "path", path, "error", err)
		}
	}
	path := s.cfg.RebootRequiredPkgs
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to read reboot marker", "path", path, "error", err)
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line == brand.PackageName {
			return
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		s.logger.Warn("failed to write reboot marker", "path", path, "error", err)
		return
	}
	defer f.Close()
	fmt.Fprintln(f, brand.PackageName)
}
