package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/setting"
)

var (
	pi3 = bootcfg.Context{Models: []string{"pi3"}, Memory: 1024}
	pi4 = bootcfg.Context{Models: []string{"pi4"}, Memory: 4096}
)

func parse(t *testing.T, kv ...string) *bootcfg.Tree {
	t.Helper()
	var fs bootcfg.FileSet
	for i := 0; i+1 < len(kv); i += 2 {
		fs = append(fs, bootcfg.File{Name: kv[i], Content: []byte(kv[i+1])})
	}
	tree, err := bootcfg.ParseFiles(fs, "config.txt")
	require.NoError(t, err)
	return tree
}

func mustResolve(t *testing.T, tree *bootcfg.Tree, ctx bootcfg.Context) *Resolved {
	t.Helper()
	res, err := New(nil).Resolve(tree, ctx)
	require.NoError(t, err)
	return res
}

func TestResolve_Defaults(t *testing.T) {
	res := mustResolve(t, parse(t), pi3)

	cam, ok := res.Get("camera.enabled")
	require.True(t, ok)
	assert.Equal(t, false, cam.Value)
	assert.False(t, cam.Explicit)
	assert.Nil(t, cam.Source)

	assert.Equal(t, 76, res.Value("gpu.mem"))
	assert.Equal(t, "kernel7.img", res.Value("boot.kernel.filename"))
	assert.Equal(t, false, res.Value("serial.enabled"))
	assert.Empty(t, res.Modified())
	assert.Len(t, res.All(), setting.Default().Len())

	_, ok = res.Get("camera.flash")
	assert.False(t, ok)
}

func TestResolve_Explicit(t *testing.T) {
	res := mustResolve(t, parse(t, "config.txt", "# camera\nstart_x=1\ngpu_mem=128\n"), pi3)

	cam, _ := res.Get("camera.enabled")
	assert.Equal(t, true, cam.Value)
	assert.True(t, cam.Modified)
	require.NotNil(t, cam.Source)
	assert.Equal(t, bootcfg.Location{File: "config.txt", Line: 2}, *cam.Source)

	// Explicitly set to what is now its default.
	gpu, _ := res.Get("gpu.mem")
	assert.Equal(t, 128, gpu.Value)
	assert.Equal(t, 128, gpu.Default)
	assert.True(t, gpu.Explicit)
	assert.False(t, gpu.Modified)

	assert.Equal(t, "start_x.elf", res.Value("boot.firmware.filename"))
	names := []string{}
	for _, e := range res.Modified() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"camera.enabled"}, names)
}

func TestResolve_DefaultDependency(t *testing.T) {
	before := mustResolve(t, parse(t), pi3)
	after := mustResolve(t, parse(t, "config.txt", "start_x=1\n"), pi3)

	b, _ := before.Get("gpu.mem")
	a, _ := after.Get("gpu.mem")
	assert.Equal(t, 76, b.Default)
	assert.Equal(t, 128, a.Default)
	assert.False(t, b.Modified)
	assert.False(t, a.Modified)
}

func TestResolve_Ambiguous(t *testing.T) {
	_, err := New(nil).Resolve(parse(t, "config.txt", "start_x=1\n\nstart_x=0\n"), pi3)
	var amb *AmbiguousSettingError
	require.True(t, errors.As(err, &amb), "expected AmbiguousSettingError, got %v", err)
	assert.Equal(t, "camera.enabled", amb.Setting)
	assert.Equal(t, []bootcfg.Location{
		{File: "config.txt", Line: 1},
		{File: "config.txt", Line: 3},
	}, amb.Locations)
	assert.Contains(t, err.Error(), "config.txt:3")

	// Agreeing lines are not a conflict.
	res := mustResolve(t, parse(t, "config.txt", "start_x=1\nstart_x=1\n"), pi3)
	cam, _ := res.Get("camera.enabled")
	assert.Equal(t, true, cam.Value)
	assert.Len(t, cam.Lines, 2)
}

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		ctx  bootcfg.Context
		want int
	}{
		{"outer only", "gpu_mem=64\n[pi4]\ngpu_mem=256\n[all]\n", pi3, 64},
		{"inner wins", "gpu_mem=64\n[pi4]\ngpu_mem=256\n[all]\n", pi4, 256},
		{"inner wins before outer", "[pi4]\ngpu_mem=256\n[all]\ngpu_mem=64\n", pi4, 256},
		{"nested filters", "[pi4]\ngpu_mem=256\n[0x1234]\ngpu_mem=300\n[all]\n", bootcfg.Context{Models: []string{"pi4"}, Memory: 4096, Serial: 0x1234, HasSerial: true}, 300},
		{"memory variant", "gpu_mem_1024=200\ngpu_mem=128\n", pi3, 200},
		{"memory variant for other boards", "gpu_mem_1024=200\ngpu_mem=128\n", bootcfg.Context{Models: []string{"pi3"}, Memory: 512}, 128},
		{"none section", "gpu_mem=96\n[none]\ngpu_mem=256\n", pi3, 96},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustResolve(t, parse(t, "config.txt", tt.text), tt.ctx)
			assert.Equal(t, tt.want, res.Value("gpu.mem"))
		})
	}
}

func TestResolve_HDMIOutputs(t *testing.T) {
	text := "hdmi_mode=16\nhdmi_mode:1=4\nstart_x:1=1\n[HDMI:1]\nhdmi_group=2\n[all]\n"
	res := mustResolve(t, parse(t, "config.txt", text), pi4)

	assert.Equal(t, 16, res.Value("video.hdmi0.mode"))
	assert.Equal(t, 4, res.Value("video.hdmi1.mode"))
	assert.Equal(t, setting.EnumValue{Value: 2, Label: "DMT", Known: true}, res.Value("video.hdmi1.group"))
	assert.Equal(t, setting.EnumValue{Value: 0, Label: "auto", Known: true}, res.Value("video.hdmi0.group"))
	// A qualifier on a single-instance command addresses nothing.
	assert.Equal(t, false, res.Value("camera.enabled"))
}

func TestResolve_OverlayParams(t *testing.T) {
	text := "dtparam=i2c=on,spi\ndtoverlay=foo,bar=1\ndtparam=audio=on\ndtoverlay=\ndtparam=watchdog=on\n"
	res := mustResolve(t, parse(t, "config.txt", text), pi3)

	assert.Equal(t, true, res.Value("i2c.enabled"))
	assert.Equal(t, true, res.Value("spi.enabled"))
	assert.Equal(t, false, res.Value("audio.enabled"), "parameters after an overlay belong to it")
	assert.Equal(t, true, res.Value("watchdog.enabled"))
}

func TestResolve_RootOnly(t *testing.T) {
	tree := parse(t,
		"config.txt", "include syscfg.txt\n",
		"syscfg.txt", "start_x=1\nenable_uart=1\n",
	)
	res := mustResolve(t, tree, pi3)
	assert.Equal(t, false, res.Value("camera.enabled"))
	assert.Equal(t, true, res.Value("serial.enabled"))

	e, _ := res.Get("serial.enabled")
	assert.Equal(t, "syscfg.txt", e.Source.File)
}

func TestResolve_DecodeError(t *testing.T) {
	_, err := New(nil).Resolve(parse(t, "config.txt", "gpu_mem=lots\n"), pi3)
	var de *setting.DecodeError
	require.True(t, errors.As(err, &de), "expected DecodeError, got %v", err)
	assert.Equal(t, "gpu.mem", de.Setting)
}

func TestResolve_Idempotent(t *testing.T) {
	tree := parse(t, "config.txt", "start_x=1\n[pi3]\nhdmi_group=1\n")
	a := mustResolve(t, tree, pi3)
	b := mustResolve(t, tree, pi3)
	assert.Equal(t, a.All(), b.All())
}

func TestResolved_Filter(t *testing.T) {
	res := mustResolve(t, parse(t), pi3)
	entries, err := res.Filter(setting.Default(), "camera.*")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "camera.enabled", entries[0].Name)

	_, err = res.Filter(setting.Default(), "[")
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	a := mustResolve(t, parse(t, "config.txt", "start_x=1\n"), pi3)
	b := mustResolve(t, parse(t, "config.txt", "enable_uart=1\ngpu_mem=128\n"), pi3)

	ab := Diff(a, b)
	ba := Diff(b, a)
	require.Len(t, ab, 2)
	require.Len(t, ba, 2)
	for i := range ab {
		assert.Equal(t, ab[i].Name, ba[i].Name)
		assert.Equal(t, ab[i].Left, ba[i].Right)
		assert.Equal(t, ab[i].Right, ba[i].Left)
	}
	assert.Equal(t, Change{Name: "camera.enabled", Left: true, Right: false}, ab[0])
	assert.Equal(t, Change{Name: "serial.enabled", Left: false, Right: true}, ab[1])

	assert.Empty(t, Diff(a, a))
}

func TestAffected(t *testing.T) {
	e := New(nil)
	names := func(ss []*setting.Setting) []string {
		out := []string{}
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return out
	}

	assert.Equal(t, []string{"i2c.enabled", "spi.enabled"},
		names(e.Affected(bootcfg.NewCommand("dtparam", "i2c=on,spi=off"), pi3)))
	assert.Equal(t, []string{"video.hdmi1.mode"},
		names(e.Affected(bootcfg.NewIndexedCommand("hdmi_mode", 1, "4"), pi3)))
	assert.Equal(t, []string{"gpu.mem"},
		names(e.Affected(bootcfg.NewCommand("gpu_mem_1024", "128"), pi3)))
	assert.Empty(t, e.Affected(bootcfg.NewCommand("gpu_mem_1024", "128"), bootcfg.Context{Memory: 512}))
	assert.Empty(t, e.Affected(bootcfg.NewComment(" just a note"), pi3))
}
