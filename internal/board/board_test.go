package board

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/bootctl/internal/config"
)

func TestFromRevision(t *testing.T) {
	tests := []struct {
		rev    uint32
		name   string
		models []string
		memory int
	}{
		{0xa02082, "Pi 3 Model B", []string{"pi3", "board-type=0x8"}, 1024},
		{0xa020d3, "Pi 3 Model B+", []string{"pi3", "pi3+", "board-type=0xd"}, 1024},
		{0xc03111, "Pi 4 Model B", []string{"pi4", "board-type=0x11"}, 4096},
		{0xc03130, "Pi 400", []string{"pi4", "pi400", "board-type=0x13"}, 4096},
		{0x9000c1, "Pi Zero W", []string{"pi0", "pi0w", "board-type=0xc"}, 512},
		{0x902120, "Pi Zero 2 W", []string{"pi0", "pi0w", "pi02", "board-type=0x12"}, 512},
		{0x1000e, "Pi 1", []string{"pi1"}, 512},
		{0x0002, "Pi 1", []string{"pi1"}, 256},
	}
	for _, tt := range tests {
		info := FromRevision(tt.rev)
		assert.Equal(t, tt.name, info.Name, "rev %x", tt.rev)
		assert.Equal(t, tt.models, info.Models, "rev %x", tt.rev)
		assert.Equal(t, tt.memory, info.Memory, "rev %x", tt.rev)
	}

	ctx := FromRevision(0xd03114).Context()
	assert.True(t, ctx.HasModel("pi4"))
	assert.True(t, ctx.HasModel("BOARD-TYPE=0x11"))
	assert.Equal(t, 8192, ctx.Memory)
}

func writeTree(t *testing.T, rev uint32, serial uint64) string {
	t.Helper()
	root := t.TempDir()
	sys := filepath.Join(root, "system")
	require.NoError(t, os.MkdirAll(sys, 0o755))

	r := make([]byte, 4)
	binary.BigEndian.PutUint32(r, rev)
	require.NoError(t, os.WriteFile(filepath.Join(sys, "linux,revision"), r, 0o644))

	s := make([]byte, 8)
	binary.BigEndian.PutUint64(s, serial)
	require.NoError(t, os.WriteFile(filepath.Join(sys, "linux,serial"), s, 0o644))
	return root
}

func TestDetect(t *testing.T) {
	info, err := Detect(writeTree(t, 0xa02082, 0x12345678))
	require.NoError(t, err)
	assert.Equal(t, "Pi 3 Model B", info.Name)
	assert.True(t, info.HasSerial)
	assert.Equal(t, uint64(0x12345678), info.Serial)

	_, err = Detect(t.TempDir())
	assert.Error(t, err)
}

func TestResolve_Overrides(t *testing.T) {
	cfg := config.BoardConfig{DeviceTree: writeTree(t, 0xa02082, 1)}

	info, err := Resolve(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1024, info.Memory)

	cfg.Model = "pi3+"
	cfg.Serial = "0xDEADBEEF"
	cfg.Memory = 512
	info, err = Resolve(cfg, nil)
	require.NoError(t, err)
	ctx := info.Context()
	assert.Equal(t, []string{"pi3", "pi3+"}, ctx.Models)
	assert.Equal(t, uint64(0xdeadbeef), ctx.Serial)
	assert.Equal(t, 512, ctx.Memory)

	// Detection failures are not fatal.
	info, err = Resolve(config.BoardConfig{DeviceTree: t.TempDir(), Model: "pi4"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"pi4"}, info.Models)

	_, err = Resolve(config.BoardConfig{DeviceTree: t.TempDir(), Serial: "xyz"}, nil)
	assert.Error(t, err)
}
