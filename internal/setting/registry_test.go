package setting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/bootctl/internal/bootcfg"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	require.NotNil(t, r)
	assert.Greater(t, r.Len(), 50)

	// Every dependency is ordered before its dependents.
	pos := map[string]int{}
	for i, s := range r.Order() {
		pos[s.Name] = i
	}
	for _, s := range r.All() {
		for _, dep := range s.Default.Deps {
			assert.Less(t, pos[dep], pos[s.Name], "%s must follow %s", s.Name, dep)
		}
	}
}

func TestNewRegistry_Cycle(t *testing.T) {
	a := &Setting{Name: "a", Type: Int, Commands: []*Command{cmd("a")}, Default: Rule{Deps: []string{"b"}}}
	b := &Setting{Name: "b", Type: Int, Commands: []*Command{cmd("b")}, Default: Rule{Deps: []string{"c"}}}
	c := &Setting{Name: "c", Type: Int, Commands: []*Command{cmd("c")}, Default: Rule{Deps: []string{"a"}}}

	_, err := NewRegistry(a, b, c)
	var ce *CatalogError
	require.True(t, errors.As(err, &ce), "expected CatalogError, got %v", err)
	assert.Contains(t, ce.Error(), "cycle")
}

func TestNewRegistry_Problems(t *testing.T) {
	a := &Setting{Name: "a", Type: Int, Commands: []*Command{cmd("a")}, Default: Rule{Deps: []string{"missing"}}}
	dup := &Setting{Name: "a", Type: Int, Commands: []*Command{cmd("a2")}}
	bare := &Setting{Name: "bare", Type: Int}

	_, err := NewRegistry(a, dup, bare)
	var ce *CatalogError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Problems, 3)
}

func TestLookupByName(t *testing.T) {
	r := Default()
	s, err := r.LookupByName("camera.enabled")
	require.NoError(t, err)
	assert.Equal(t, "start_x", s.Commands[0].Name)

	_, err = r.LookupByName("camera.flash")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestLookupByDirective(t *testing.T) {
	r := Default()

	names := func(ss []*Setting) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return out
	}

	assert.Equal(t, []string{"gpu.mem"}, names(r.LookupByDirective("gpu_mem_1024")))
	assert.Equal(t, []string{"video.hdmi0.mode", "video.hdmi1.mode"}, names(r.LookupByDirective("hdmi_mode")))
	assert.Equal(t, []string{"i2c.enabled"}, names(r.LookupByDirective("dtparam:i2c")))
	assert.Contains(t, names(r.LookupByDirective("dtparam")), "spi.enabled")
	assert.Empty(t, r.LookupByDirective("no_such_directive"))
}

func TestBindingsAndAddresses(t *testing.T) {
	r := Default()
	var targets []string
	for _, b := range r.Bindings("hdmi_group") {
		if b.Setting.Addresses(1, true) {
			targets = append(targets, b.Setting.Name)
		}
	}
	assert.Equal(t, []string{"video.hdmi1.group"}, targets)

	gpu, _ := r.LookupByName("gpu.mem")
	assert.True(t, gpu.Addresses(1, false), "section index does not matter to unindexed settings")
	assert.False(t, gpu.Addresses(1, true))
}

func TestMatch(t *testing.T) {
	r := Default()
	ss, err := r.Match("video.hdmi?.mode")
	require.NoError(t, err)
	assert.Len(t, ss, 2)

	ss, err = r.Match("camera.*")
	require.NoError(t, err)
	assert.Len(t, ss, 1, "* does not cross dots")

	ss, err = r.Match("camera.**")
	require.NoError(t, err)
	assert.Len(t, ss, 2)

	_, err = r.Match("[")
	assert.Error(t, err)
}

func TestRegistryCodec(t *testing.T) {
	r := Default()
	mode, _ := r.LookupByName("video.tv.mode")

	v, err := r.Decode(mode, "2")
	require.NoError(t, err)
	assert.Equal(t, EnumValue{Value: 2, Label: "PAL", Known: true}, v)

	raw, ok, err := r.Encode(mode, v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", raw)

	_, err = r.Decode(mode, "pal")
	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestDefaults(t *testing.T) {
	r := Default()
	gpu, _ := r.LookupByName("gpu.mem")
	fw, _ := r.LookupByName("boot.firmware.filename")

	small := bootcfg.Context{Models: []string{"pi3"}, Memory: 1024}
	env := NewEnv(small, map[string]Value{"camera.enabled": false})
	assert.Equal(t, 76, gpu.DefaultValue(env))

	env = NewEnv(small, map[string]Value{"camera.enabled": true})
	assert.Equal(t, 128, gpu.DefaultValue(env))

	env = NewEnv(bootcfg.Context{Models: []string{"pi4"}}, map[string]Value{
		"gpu.mem": 128, "camera.enabled": true, "boot.debug.enabled": false,
	})
	assert.Equal(t, "start4x.elf", fw.DefaultValue(env))

	env = NewEnv(small, map[string]Value{"gpu.mem": 16, "camera.enabled": false, "boot.debug.enabled": false})
	assert.Equal(t, "start_cd.elf", fw.DefaultValue(env))
}

func TestDefaults_UndeclaredDependency(t *testing.T) {
	s := &Setting{
		Name:     "sneaky",
		Type:     Int,
		Commands: []*Command{cmd("sneaky")},
		Default:  Rule{Fn: func(env Env) Value { return env.Int("gpu.mem") }},
	}
	assert.Panics(t, func() {
		s.DefaultValue(NewEnv(bootcfg.Context{}, map[string]Value{"gpu.mem": 64}))
	})
}
