// Package brand provides centralized naming and default locations for the tool.
//
// The brand identity is loaded from brand.json at compile time via go:embed.
// Packaging scripts read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Vendor           string `json:"vendor"`
	Website          string `json:"website"`
	Repository       string `json:"repository"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultBootDir   string `json:"defaultBootDir"`
	DefaultStoreDir  string `json:"defaultStoreDir"`
	DefaultRunDir    string `json:"defaultRunDir"`
	BinaryName       string `json:"binaryName"`
	ConfigFileName   string `json:"configFileName"`
	ArchivePrefix    string `json:"archivePrefix"`
	PackageName      string `json:"packageName"`
	Copyright        string `json:"copyright"`
	License          string `json:"license"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Vendor = b.Vendor
	Website = b.Website
	Repository = b.Repository
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultBootDir = b.DefaultBootDir
	DefaultStoreDir = b.DefaultStoreDir
	DefaultRunDir = b.DefaultRunDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
	ArchivePrefix = b.ArchivePrefix
	PackageName = b.PackageName
	Copyright = b.Copyright
	License = b.License
}

var (
	Name             string
	LowerName        string
	Vendor           string
	Website          string
	Repository       string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	DefaultBootDir   string
	DefaultStoreDir  string
	DefaultRunDir    string
	BinaryName       string
	ConfigFileName   string
	ArchivePrefix    string
	PackageName      string
	Copyright        string
	License          string

	// Version is set at build time via -ldflags
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// GetConfigDir returns the system configuration directory, checking env vars first.
// Priority: BOOTCTL_CONFIG_DIR > BOOTCTL_PREFIX/etc > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "etc")
	}
	return DefaultConfigDir
}

// GetRunDir returns the runtime directory holding reboot markers.
// Priority: BOOTCTL_RUN_DIR > BOOTCTL_PREFIX/run > DefaultRunDir
func GetRunDir() string {
	if dir := os.Getenv(ConfigEnvPrefix + "_RUN_DIR"); dir != "" {
		return dir
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, "run")
	}
	return DefaultRunDir
}

// SystemConfigPath returns the path of the system-wide tool configuration.
func SystemConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}
