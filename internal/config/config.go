package config

import (
	"path/filepath"

	"grimm.is/bootctl/internal/brand"
)

// CurrentSchemaVersion is written into generated configuration files.
const CurrentSchemaVersion = "1"

// Config holds the resolved tool settings.
type Config struct {
	SchemaVersion string

	// BootPath is the mount point of the boot partition.
	BootPath string
	// StorePath is the directory holding saved bundles. Relative paths are
	// taken relative to BootPath.
	StorePath string
	// ConfigRoot is the file the firmware reads first, relative to BootPath.
	ConfigRoot string
	// ConfigWrite is the only file the tool rewrites. It must be the root
	// file or reachable from it through include lines.
	ConfigWrite string
	// ConfigTemplate is written when ConfigWrite does not exist yet.
	ConfigTemplate string

	// Backup saves an unsaved live configuration before it is replaced.
	Backup bool
	// CommentLines comments out lines the tool no longer needs instead of
	// deleting them.
	CommentLines bool
	// MaxBackups bounds the number of automatic backups kept. Zero keeps all.
	MaxBackups int

	// RebootRequired and RebootRequiredPkgs are touched after the boot
	// configuration changes. Empty disables the marker.
	RebootRequired     string
	RebootRequiredPkgs string

	LogLevel string
	LogJSON  bool

	Board BoardConfig
}

// BoardConfig overrides hardware detection.
type BoardConfig struct {
	// Model is a board tag such as "pi4" or "pi3+".
	Model string
	// Serial is the hex serial number used by [0x...] sections.
	Serial string
	// Memory is the RAM size in MB.
	Memory int
	// DeviceTree is the root of the firmware device tree.
	DeviceTree string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SchemaVersion:      CurrentSchemaVersion,
		BootPath:           brand.DefaultBootDir,
		StorePath:          brand.DefaultStoreDir,
		ConfigRoot:         "config.txt",
		ConfigWrite:        "config.txt",
		ConfigTemplate:     defaultTemplate,
		Backup:             true,
		CommentLines:       true,
		MaxBackups:         0,
		RebootRequired:     filepath.Join(brand.GetRunDir(), "reboot-required"),
		RebootRequiredPkgs: filepath.Join(brand.GetRunDir(), "reboot-required.pkgs"),
		LogLevel:           "warn",
		Board: BoardConfig{
			DeviceTree: "/proc/device-tree",
		},
	}
}

// StoreDir returns the absolute bundle directory.
func (c *Config) StoreDir() string {
	if filepath.IsAbs(c.StorePath) {
		return c.StorePath
	}
	return filepath.Join(c.BootPath, c.StorePath)
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

const defaultTemplate = `# This file is intended to contain system-made configuration changes. User
# configuration changes should be placed in "usercfg.txt". Please refer to the
# README file for a description of the various configuration files on the boot
# partition.

`
