package store

import (
	"errors"
	"io/fs"
	"time"

	"grimm.is/bootctl/internal/bootcfg"
)

// Configuration is a complete boot configuration: the live one on the boot
// partition, a stored bundle, or the empty default.
type Configuration struct {
	// Name is the bundle name, empty for the live configuration.
	Name string `json:"name" yaml:"name"`
	// Files lists the members in parse order followed by files named by
	// settings, such as the kernel command line.
	Files     bootcfg.FileSet `json:"-" yaml:"-"`
	Hash      string          `json:"hash" yaml:"hash"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Tree      *bootcfg.Tree   `json:"-" yaml:"-"`
}

// DefaultHash is the hash of a configuration without files.
const DefaultHash = "da39a3ee5e6b4b0d3255bfef95601890afd80709"

// load parses the configuration readable from src and gathers the files its
// settings name. Includes in sections that do not select the store's board
// are not read, so the file set and hash are those the firmware sees.
func (s *Store) load(name string, src bootcfg.Source) (*Configuration, error) {
	tree, err := bootcfg.Parse(src, s.cfg.ConfigRoot, bootcfg.ForBoard(s.board))
	if err != nil {
		return nil, err
	}

	files := append(bootcfg.FileSet(nil), tree.Files...)
	res := s.engine.Evaluate(tree, s.board)
	for _, st := range s.engine.Registry().All() {
		if !st.IncludedFile {
			continue
		}
		path, _ := res.Value(st.Name).(string)
		if path == "" {
			continue
		}
		path = bootcfg.CleanName(path)
		if _, ok := files.Get(path); ok {
			continue
		}
		f, err := src.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		f.Name = path
		files = append(files, f)
	}

	c := &Configuration{
		Name:      name,
		Files:     files,
		Hash:      files.Hash(),
		Timestamp: files.Timestamp(),
		Tree:      tree,
	}
	if len(files) == 0 {
		c.Timestamp = time.Unix(0, 0).UTC()
	}
	return c, nil
}

// defaultConfiguration returns the empty configuration.
func (s *Store) defaultConfiguration() *Configuration {
	return &Configuration{
		Name:      "default",
		Hash:      DefaultHash,
		Timestamp: time.Unix(0, 0).UTC(),
		Tree:      bootcfg.NewTree(s.cfg.ConfigRoot),
	}
}
