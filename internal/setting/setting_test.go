package setting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/bootctl/internal/bootcfg"
)

func lookup(t *testing.T, name string) *Setting {
	t.Helper()
	s, err := Default().LookupByName(name)
	require.NoError(t, err)
	return s
}

func TestDecode(t *testing.T) {
	tests := []struct {
		setting string
		cmd     int
		arg     string
		hasArg  bool
		want    Value
		ok      bool
	}{
		{"camera.enabled", 0, "1", true, true, true},
		{"camera.enabled", 0, "0", true, false, true},
		{"camera.led.enabled", 0, "1", true, false, true},
		{"i2c.enabled", 0, "", false, true, true},
		{"i2c.enabled", 0, "off", true, false, true},
		{"boot.kernel.address", 0, "0x80000", true, 0x80000, true},
		{"video.display.rotate", 0, "65537", true, EnumValue{Value: 65537}, true},
		{"video.license.mpg2", 0, "0x12345678, 0x9abcdef0", true, []string{"0x12345678", "0x9abcdef0"}, true},
		{"video.hdmi0.hotplug", 0, "1", true, EnumValue{Value: 1, Label: "force", Known: true}, true},
		{"video.hdmi0.hotplug", 0, "0", true, EnumValue{Value: 1, Label: "force", Known: true}, false},
		{"video.hdmi0.edid.ignore", 0, "0xa5000080", true, true, true},
		{"audio.dither", 1, "1", true, false, true},
	}
	for _, tc := range tests {
		s := lookup(t, tc.setting)
		got, ok, err := s.Decode(s.Commands[tc.cmd], tc.arg, tc.hasArg)
		require.NoError(t, err, "%s=%q", tc.setting, tc.arg)
		assert.Equal(t, tc.ok, ok, "%s=%q effect", tc.setting, tc.arg)
		if tc.ok {
			assert.True(t, Equal(tc.want, got), "%s=%q: want %v, got %v", tc.setting, tc.arg, tc.want, got)
		}
	}
}

func TestDecode_Error(t *testing.T) {
	s := lookup(t, "gpu.mem")
	_, _, err := s.Decode(s.Commands[0], "lots", true)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "gpu.mem", de.Setting)
	assert.Equal(t, "lots", de.Raw)
}

func TestEncode(t *testing.T) {
	gpu := lookup(t, "gpu.mem")
	as, err := gpu.Encode(128)
	require.NoError(t, err)
	require.Len(t, as, 4)
	assert.True(t, as[0].Set)
	assert.Equal(t, "128", as[0].Arg)
	for _, a := range as[1:] {
		assert.False(t, a.Set, "%s should be cleared", a.Command.Name)
	}

	led := lookup(t, "camera.led.enabled")
	as, err = led.Encode(false)
	require.NoError(t, err)
	assert.Equal(t, "1", as[0].Arg, "inverted booleans are written negated")

	i2c := lookup(t, "i2c.enabled")
	as, err = i2c.Encode(true)
	require.NoError(t, err)
	assert.Equal(t, "on", as[0].Arg)

	hotplug := lookup(t, "video.hdmi1.hotplug")
	as, err = hotplug.Encode(hotplug.Enum(2))
	require.NoError(t, err)
	assert.False(t, as[0].Set)
	assert.True(t, as[1].Set)

	dither := lookup(t, "audio.dither")
	as, err = dither.Encode(nil)
	require.NoError(t, err)
	assert.False(t, as[0].Set || as[1].Set)

	_, err = gpu.Encode("128")
	var ve *ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestParse(t *testing.T) {
	v, err := lookup(t, "camera.enabled").Parse("on")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = lookup(t, "video.tv.mode").Parse("pal")
	require.NoError(t, err)
	assert.Equal(t, 2, v.(EnumValue).Value)

	v, err = lookup(t, "video.tv.mode").Parse("42")
	require.NoError(t, err)
	assert.False(t, v.(EnumValue).Known)

	v, err = lookup(t, "audio.dither").Parse("auto")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = lookup(t, "gpu.mem").Parse("lots")
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	v, err := lookup(t, "gpu.mem").Coerce(float64(128))
	require.NoError(t, err)
	assert.Equal(t, 128, v)

	v, err = lookup(t, "video.license.wvc1").Coerce([]any{"0x12345678"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0x12345678"}, v)

	_, err = lookup(t, "camera.enabled").Coerce(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ctx := bootcfg.Context{Models: []string{"pi3"}, Memory: 512}
	gpu := lookup(t, "gpu.mem")

	env := NewEnv(ctx, map[string]Value{"camera.enabled": true})
	assert.Error(t, gpu.Validate(32, env), "camera needs 64MB")
	assert.Error(t, gpu.Validate(512, env), "above the 512MB board limit")
	assert.NoError(t, gpu.Validate(128, env))
	assert.Error(t, gpu.Validate(400, env), "above the 384MB limit of 512MB boards")
	assert.NoError(t, gpu.Validate(384, env))

	big := NewEnv(bootcfg.Context{Models: []string{"pi4"}, Memory: 4096}, map[string]Value{"camera.enabled": false})
	assert.NoError(t, gpu.Validate(512, big))
	assert.Error(t, gpu.Validate(600, big), "512MB is the limit on every larger board")
	tiny := NewEnv(bootcfg.Context{Models: []string{"pi0"}, Memory: 256}, map[string]Value{"camera.enabled": false})
	assert.Error(t, gpu.Validate(192, tiny))

	mode := lookup(t, "video.hdmi0.mode")
	env = NewEnv(ctx, map[string]Value{"video.hdmi0.group": EnumValue{Value: 2}})
	assert.Error(t, mode.Validate(100, env))
	assert.NoError(t, mode.Validate(82, env))

	delay := lookup(t, "boot.delay")
	assert.Error(t, delay.Validate(61, env))

	lic := lookup(t, "video.license.mpg2")
	assert.Error(t, lic.Validate([]string{"nope"}, env))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "on", Format(nil, true))
	assert.Equal(t, "0x8000", Format(lookup(t, "boot.kernel.address"), 0x8000))
	assert.Equal(t, "PAL", Format(nil, EnumValue{Value: 2, Label: "PAL", Known: true}))
	assert.Equal(t, "42", Format(nil, EnumValue{Value: 42}))
	assert.Equal(t, "auto", Format(nil, nil))
}
