package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/config"
	"grimm.is/bootctl/internal/i18n"
	"grimm.is/bootctl/internal/logging"
	"grimm.is/bootctl/internal/setting"
	"grimm.is/bootctl/internal/store"
	"grimm.is/bootctl/internal/testutil"
)

var pi3 = bootcfg.Context{Models: []string{"pi3"}, Memory: 1024}

// newStore returns a store over a temp boot directory and captures command
// output.
func newStore(t *testing.T, kv ...string) (*store.Store, string, *bytes.Buffer) {
	t.Helper()
	run := t.TempDir()
	cfg := config.Default()
	cfg.BootPath = testutil.BootDir(t, kv...)
	cfg.StorePath = "store"
	cfg.RebootRequired = filepath.Join(run, "reboot-required")
	cfg.RebootRequiredPkgs = filepath.Join(run, "reboot-required.pkgs")

	var out bytes.Buffer
	oldOut, oldPrinter := Stdout, Printer
	Stdout, Printer = &out, i18n.NewPrinter(i18n.DefaultLang)
	t.Cleanup(func() { Stdout, Printer = oldOut, oldPrinter })

	return store.New(cfg, pi3), cfg.BootPath, &out
}

func liveValue(t *testing.T, st *store.Store, name string) setting.Value {
	t.Helper()
	current, err := st.Current()
	require.NoError(t, err)
	res, err := st.Resolve(current)
	require.NoError(t, err)
	return res.Value(name)
}

func TestRunStatus(t *testing.T) {
	st, _, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")

	require.NoError(t, RunStatus(st, nil, false))
	assert.Equal(t, "board:\n  models: [pi3]\n  memory: 1024\nsettings:\n  i2c.enabled: true\n", out.String())

	out.Reset()
	require.NoError(t, RunStatus(st, nil, true))
	assert.Contains(t, out.String(), "  i2c.baud: 100000\n")
	assert.Contains(t, out.String(), "  serial.enabled: false\n")

	out.Reset()
	require.NoError(t, RunStatus(st, []string{"spi.*"}, false))
	assert.Contains(t, out.String(), "settings: {}\n")

	out.Reset()
	require.NoError(t, RunStatus(st, []string{"i2c.*"}, true))
	assert.Contains(t, out.String(), "settings:\n  i2c.baud: 100000\n  i2c.enabled: true\n")
	assert.NotContains(t, out.String(), "spi.enabled")
}

func TestRunStatus_Active(t *testing.T) {
	st, _, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")
	require.NoError(t, st.Save("i2c", false))

	require.NoError(t, RunStatus(st, nil, false))
	assert.Contains(t, out.String(), "active: i2c\n")
}

func TestRunShow(t *testing.T) {
	st, boot, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")
	require.NoError(t, st.Save("i2c", false))
	testutil.WriteFiles(t, boot, "config.txt", "enable_uart=1\n")

	require.NoError(t, RunShow(st, "i2c", nil, false))
	assert.Equal(t, "i2c.enabled: true\n", out.String())

	out.Reset()
	require.NoError(t, RunShow(st, "i2c", []string{"i2c.*"}, true))
	assert.Equal(t, "i2c.baud: 100000\ni2c.enabled: true\n", out.String())

	out.Reset()
	require.NoError(t, RunShow(st, "i2c", []string{"serial.*"}, false))
	assert.Equal(t, "{}\n", out.String())

	out.Reset()
	require.NoError(t, RunShow(st, "default", nil, false))
	assert.Equal(t, "{}\n", out.String())

	var nf *store.NotFoundError
	assert.True(t, errors.As(RunShow(st, "missing", nil, false), &nf))
	var in *store.InvalidNameError
	assert.True(t, errors.As(RunShow(st, "", nil, false), &in))
}

func TestRunGet(t *testing.T) {
	st, _, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")

	require.NoError(t, RunGet(st, []string{"i2c.enabled"}))
	assert.Equal(t, "true\n", out.String())

	out.Reset()
	require.NoError(t, RunGet(st, []string{"i2c.*"}))
	assert.Equal(t, "i2c.baud: 100000\ni2c.enabled: true\n", out.String())

	out.Reset()
	require.NoError(t, RunGet(st, []string{"i2c.enabled", "spi.enabled"}))
	assert.Equal(t, "i2c.enabled: true\nspi.enabled: false\n", out.String())

	var nf *setting.NotFoundError
	assert.True(t, errors.As(RunGet(st, []string{"no.such.setting"}), &nf))
}

func TestRunSet(t *testing.T) {
	st, _, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")

	require.NoError(t, RunSet(st, []string{"i2c.baud=400000", "spi.enabled=on"}, "", true))
	assert.Contains(t, out.String(), "Updated config.txt; reboot required\n")
	assert.Equal(t, 400000, liveValue(t, st, "i2c.baud"))
	assert.Equal(t, true, liveValue(t, st, "spi.enabled"))

	// The unsaved original was backed up before the change.
	assert.Contains(t, out.String(), "Backed up current configuration as backup-")

	out.Reset()
	require.NoError(t, RunSet(st, []string{"i2c.baud="}, "", false))
	assert.Equal(t, 100000, liveValue(t, st, "i2c.baud"))
	assert.NotContains(t, out.String(), "Backed up")
}

func TestRunSet_Unchanged(t *testing.T) {
	st, boot, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")

	require.NoError(t, RunSet(st, []string{"i2c.enabled=on"}, "", true))
	assert.Equal(t, "No changes to config.txt\n", out.String())

	entries, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, entries, "no backup without a write")
	content, _ := testutil.ReadFile(t, boot, "config.txt")
	assert.Equal(t, "dtparam=i2c_arm=on\n", content)
}

func TestRunSet_From(t *testing.T) {
	st, _, _ := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")
	path := filepath.Join(t.TempDir(), "changes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("i2c.enabled: false\ni2c.baud: 400000\n"), 0o644))

	require.NoError(t, RunSet(st, nil, path, false))
	assert.Equal(t, false, liveValue(t, st, "i2c.enabled"))
	assert.Equal(t, 400000, liveValue(t, st, "i2c.baud"))
}

func TestRunSet_Errors(t *testing.T) {
	st, boot, _ := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("i2c.baud: [1, 2]\n"), 0o644))

	tests := []struct {
		name string
		args []string
		from string
	}{
		{"NoSettings", nil, ""},
		{"MissingEquals", []string{"i2c.enabled"}, ""},
		{"UnknownSetting", []string{"no.such=1"}, ""},
		{"BadValue", []string{"i2c.baud=fast"}, ""},
		{"OutOfRange", []string{"i2c.baud=1"}, ""},
		{"Both", []string{"i2c.enabled=off"}, path},
		{"BadYAMLValue", nil, path},
		{"MissingFile", nil, filepath.Join(t.TempDir(), "missing.yaml")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, RunSet(st, tc.args, tc.from, false))
		})
	}

	content, ok := testutil.ReadFile(t, boot, "config.txt")
	require.True(t, ok)
	assert.Equal(t, "dtparam=i2c_arm=on\n", content)
}

func TestBundleCommands(t *testing.T) {
	st, boot, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")

	require.NoError(t, RunSave(st, "i2c", false))
	assert.Equal(t, "Saved configuration i2c\n", out.String())
	assert.Error(t, RunSave(st, "i2c", false))

	out.Reset()
	require.NoError(t, RunList(st))
	assert.Equal(t, "- name: i2c\n  timestamp: \"2024-05-01 12:00:00\"\n  active: true\n", out.String())

	out.Reset()
	require.NoError(t, RunRename(st, "i2c", "bus", false))
	assert.Equal(t, "Renamed configuration i2c to bus\n", out.String())

	testutil.WriteFiles(t, boot, "config.txt", "enable_uart=1\n")
	out.Reset()
	require.NoError(t, RunLoad(st, "bus", true))
	assert.Contains(t, out.String(), "Backed up current configuration as backup-")
	assert.Contains(t, out.String(), "Loaded configuration bus\n")
	content, _ := testutil.ReadFile(t, boot, "config.txt")
	assert.Equal(t, "dtparam=i2c_arm=on\n", content)

	out.Reset()
	require.NoError(t, RunRemove(st, "bus", false))
	assert.Equal(t, "Removed configuration bus\n", out.String())
	assert.Error(t, RunRemove(st, "bus", false))
	assert.NoError(t, RunRemove(st, "bus", true))
}

func TestRunList_Empty(t *testing.T) {
	st, _, out := newStore(t)
	require.NoError(t, RunList(st))
	assert.Equal(t, "[]\n", out.String())
}

func TestRunDiff(t *testing.T) {
	st, boot, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")
	require.NoError(t, st.Save("i2c", false))

	require.NoError(t, RunDiff(st, []string{"i2c"}))
	assert.Equal(t, "No differences between current and i2c\n", out.String())

	testutil.WriteFiles(t, boot, "config.txt", "dtparam=i2c_arm=on\nenable_uart=1\n")
	out.Reset()
	require.NoError(t, RunDiff(st, []string{"i2c"}))
	assert.Equal(t, "- name: serial.enabled\n  left: true\n  right: false\n", out.String())

	out.Reset()
	require.NoError(t, RunDiff(st, []string{"default", "i2c"}))
	assert.Equal(t, "- name: i2c.enabled\n  left: false\n  right: true\n", out.String())

	assert.Error(t, RunDiff(st, []string{"missing"}))
}

func TestRunFilesDiff(t *testing.T) {
	st, boot, out := newStore(t, "config.txt", "dtparam=i2c_arm=on\n")
	require.NoError(t, st.Save("i2c", false))
	testutil.WriteFiles(t, boot, "config.txt", "dtparam=i2c_arm=on\nenable_uart=1\n")

	require.NoError(t, RunFilesDiff(st, []string{"i2c"}))
	text := out.String()
	assert.Contains(t, text, "--- current/config.txt\n+++ i2c/config.txt\n")
	assert.Contains(t, text, "-enable_uart=1\n")

	out.Reset()
	require.NoError(t, RunFilesDiff(st, []string{"i2c", "i2c"}))
	assert.Equal(t, "No differences between i2c and i2c\n", out.String())
}

func TestOpen(t *testing.T) {
	boot := testutil.BootDir(t, "config.txt", "[pi4]\ndtparam=spi=on\n[pi3]\ndtparam=i2c_arm=on\n")
	run := t.TempDir()
	path := filepath.Join(t.TempDir(), "bootctl.hcl")
	src := fmt.Sprintf(`
boot_path            = %q
store_path           = "store"
board_model          = "pi3"
board_memory         = 1024
device_tree          = %q
reboot_required      = %q
reboot_required_pkgs = %q
log_level            = "error"
`, boot, filepath.Join(run, "no-device-tree"), filepath.Join(run, "rr"), filepath.Join(run, "rr.pkgs"))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	st, err := Open(path, false)
	require.NoError(t, err)
	assert.False(t, logging.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.Equal(t, filepath.Join(boot, "store"), st.Dir())
	assert.Equal(t, []string{"pi3"}, st.Board().Models)
	assert.Equal(t, true, liveValue(t, st, "i2c.enabled"))
	assert.Equal(t, false, liveValue(t, st, "spi.enabled"))

	_, err = Open(path, true)
	require.NoError(t, err)
	assert.True(t, logging.Default().Enabled(context.Background(), slog.LevelDebug), "verbose overrides the configured level")

	_, err = Open(filepath.Join(t.TempDir(), "missing.hcl"), false)
	assert.NoError(t, err, "a missing file leaves the defaults")
}
