package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/bootctl/internal/brand"
)

// fileConfig mirrors Config with every attribute optional so that a file
// only overrides what it names.
type fileConfig struct {
	SchemaVersion      *string `hcl:"schema_version,optional"`
	BootPath           *string `hcl:"boot_path,optional"`
	StorePath          *string `hcl:"store_path,optional"`
	ConfigRoot         *string `hcl:"config_root,optional"`
	ConfigWrite        *string `hcl:"config_write,optional"`
	ConfigTemplate     *string `hcl:"config_template,optional"`
	Backup             *bool   `hcl:"backup,optional"`
	CommentLines       *bool   `hcl:"comment_lines,optional"`
	MaxBackups         *int    `hcl:"max_backups,optional"`
	RebootRequired     *string `hcl:"reboot_required,optional"`
	RebootRequiredPkgs *string `hcl:"reboot_required_pkgs,optional"`
	LogLevel           *string `hcl:"log_level,optional"`
	LogJSON            *bool   `hcl:"log_json,optional"`
	BoardModel         *string `hcl:"board_model,optional"`
	BoardSerial        *string `hcl:"board_serial,optional"`
	BoardMemory        *int    `hcl:"board_memory,optional"`
	DeviceTree         *string `hcl:"device_tree,optional"`
}

// DefaultPaths returns the configuration files consulted by Load, in
// override order.
func DefaultPaths() []string {
	paths := []string{brand.SystemConfigPath()}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, brand.ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", brand.ConfigFileName))
	}
	return paths
}

// Load reads each existing file in paths over the defaults. Missing files
// are skipped. The result is validated.
func Load(paths ...string) (*Config, error) {
	cfg := Default()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decodeInto(cfg, data, path); err != nil {
			return nil, err
		}
	}
	if errs := cfg.Validate(); errs.HasErrors() {
		return nil, errs
	}
	return cfg, nil
}

// LoadHCL decodes a single HCL document over the defaults.
func LoadHCL(data []byte, filename string) (*Config, error) {
	cfg := Default()
	if err := decodeInto(cfg, data, filename); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); errs.HasErrors() {
		return nil, errs
	}
	return cfg, nil
}

func decodeInto(cfg *Config, data []byte, filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("HCL parse error: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &fc); diags.HasErrors() {
		return fmt.Errorf("HCL decode error: %s", diags.Error())
	}
	fc.apply(cfg)
	return nil
}

// evalContext exposes the process environment as the env object.
func evalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !hclIdentifier(k) {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func hclIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.SchemaVersion, fc.SchemaVersion)
	setString(&cfg.BootPath, fc.BootPath)
	setString(&cfg.StorePath, fc.StorePath)
	setString(&cfg.ConfigRoot, fc.ConfigRoot)
	setString(&cfg.ConfigWrite, fc.ConfigWrite)
	setString(&cfg.ConfigTemplate, fc.ConfigTemplate)
	setString(&cfg.RebootRequired, fc.RebootRequired)
	setString(&cfg.RebootRequiredPkgs, fc.RebootRequiredPkgs)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.Board.Model, fc.BoardModel)
	setString(&cfg.Board.Serial, fc.BoardSerial)
	setString(&cfg.Board.DeviceTree, fc.DeviceTree)
	if fc.Backup != nil {
		cfg.Backup = *fc.Backup
	}
	if fc.CommentLines != nil {
		cfg.CommentLines = *fc.CommentLines
	}
	if fc.LogJSON != nil {
		cfg.LogJSON = *fc.LogJSON
	}
	if fc.MaxBackups != nil {
		cfg.MaxBackups = *fc.MaxBackups
	}
	if fc.BoardMemory != nil {
		cfg.Board.Memory = *fc.BoardMemory
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
