package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/boot", cfg.BootPath)
	assert.Equal(t, "config.txt", cfg.ConfigRoot)
	assert.Equal(t, "config.txt", cfg.ConfigWrite)
	assert.True(t, cfg.Backup)
	assert.True(t, cfg.CommentLines)
	assert.Equal(t, filepath.Join("/boot", "pibootctl"), cfg.StoreDir())
	assert.False(t, cfg.Validate().HasErrors())
}

func TestLoadHCL(t *testing.T) {
	src := `
boot_path    = "/mnt/boot"
store_path   = "/var/lib/bootctl"
config_write = "syscfg.txt"
backup       = false
max_backups  = 3
board_model  = "pi4"
board_memory = 4096
`
	cfg, err := LoadHCL([]byte(src), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "/mnt/boot", cfg.BootPath)
	assert.Equal(t, "/var/lib/bootctl", cfg.StoreDir())
	assert.Equal(t, "config.txt", cfg.ConfigRoot, "unset attributes keep defaults")
	assert.Equal(t, "syscfg.txt", cfg.ConfigWrite)
	assert.False(t, cfg.Backup)
	assert.True(t, cfg.CommentLines)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, "pi4", cfg.Board.Model)
	assert.Equal(t, 4096, cfg.Board.Memory)
}

func TestLoadHCL_Env(t *testing.T) {
	t.Setenv("BOOTCTL_TEST_BOOT", "/srv/boot")
	cfg, err := LoadHCL([]byte(`boot_path = env.BOOTCTL_TEST_BOOT`), "env.hcl")
	require.NoError(t, err)
	assert.Equal(t, "/srv/boot", cfg.BootPath)
}

func TestLoadHCL_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"Syntax", `boot_path = `},
		{"UnknownAttribute", `boot_dir = "/boot"`},
		{"AbsoluteWrite", `config_write = "/boot/syscfg.txt"`},
		{"Escape", `config_root = "../config.txt"`},
		{"NegativeBackups", `max_backups = -1`},
		{"BadSerial", `board_serial = "xyz"`},
		{"Schema", `schema_version = "9"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadHCL([]byte(tc.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoad_Override(t *testing.T) {
	dir := t.TempDir()
	system := filepath.Join(dir, "system.hcl")
	user := filepath.Join(dir, "user.hcl")
	missing := filepath.Join(dir, "missing.hcl")

	if err := os.WriteFile(system, []byte("boot_path = \"/a\"\nbackup = false\n"), 0644); err != nil {
		t.Fatalf("Failed to write system config: %v", err)
	}
	if err := os.WriteFile(user, []byte("boot_path = \"/b\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write user config: %v", err)
	}

	cfg, err := Load(system, missing, user)
	require.NoError(t, err)
	assert.Equal(t, "/b", cfg.BootPath)
	assert.False(t, cfg.Backup, "earlier files still apply")
}

func TestValidationErrors(t *testing.T) {
	warn := ValidationErrors{{Field: "log_level", Message: "odd", Severity: "warning"}}
	assert.False(t, warn.HasErrors())

	errs := append(warn, ValidationError{Field: "boot_path", Message: "must not be empty"})
	assert.True(t, errs.HasErrors())
	assert.Contains(t, errs.Error(), "boot_path: must not be empty")
}
