package setting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"grimm.is/bootctl/internal/bootcfg"
)

func cmd(name string) *Command     { return &Command{Name: name} }
func rootCmd(name string) *Command { return &Command{Name: name, RootOnly: true} }

func param(p string, aliases ...string) *Command {
	return &Command{Name: "dtparam", Param: p, Aliases: aliases}
}

func isPi4Family(ctx bootcfg.Context) bool {
	return ctx.HasModel("pi4") || ctx.HasModel("pi400") || ctx.HasModel("cm4")
}

func hasBluetooth(ctx bootcfg.Context) bool {
	for _, m := range []string{"pi3", "pi4", "pi400", "pi0w", "pi02"} {
		if ctx.HasModel(m) {
			return true
		}
	}
	return false
}

func memIs(mb int) func(bootcfg.Context) bool {
	return func(ctx bootcfg.Context) bool { return ctx.Memory == mb }
}

func memAtLeast(mb int) func(bootcfg.Context) bool {
	return func(ctx bootcfg.Context) bool { return ctx.Memory >= mb }
}

// Catalog returns a fresh copy of the built-in settings.
func Catalog() []*Setting {
	settings := []*Setting{
		{
			Name:     "camera.enabled",
			Type:     Bool,
			Doc:      "Enables the camera module. Selects the camera-capable firmware and needs at least 64MB of GPU memory.",
			Commands: []*Command{rootCmd("start_x")},
			Default:  Const(false),
		},
		{
			Name:     "camera.led.enabled",
			Type:     Bool,
			Doc:      "Lights the red LED while the camera is recording.",
			Commands: []*Command{cmd("disable_camera_led")},
			Inverted: true,
			Default:  Const(true),
		},
		{
			Name:     "boot.debug.enabled",
			Type:     Bool,
			Doc:      "Boots the debug build of the firmware.",
			Commands: []*Command{rootCmd("start_debug")},
			Default:  Const(false),
		},
		gpuMem(),
		{
			Name:     "boot.firmware.filename",
			Type:     String,
			Doc:      "The GPU firmware loaded at boot. The default follows the GPU memory, camera and debug settings.",
			Commands: []*Command{rootCmd("start_file")},
			Default:  Rule{Deps: []string{"gpu.mem", "camera.enabled", "boot.debug.enabled"}, Fn: firmwareFile("start", ".elf")},
		},
		{
			Name:     "boot.firmware.fixup",
			Type:     String,
			Doc:      "The memory-split fixup file matching the GPU firmware.",
			Commands: []*Command{rootCmd("fixup_file")},
			Default:  Rule{Deps: []string{"gpu.mem", "camera.enabled", "boot.debug.enabled"}, Fn: firmwareFile("fixup", ".dat")},
		},
		{
			Name:     "boot.mem",
			Type:     Int,
			Doc:      "Limits the memory visible to Linux, in MB. The default is all installed memory.",
			Commands: []*Command{cmd("total_mem")},
			Default:  Rule{Fn: func(env Env) Value { return env.Board.Memory }},
			Check: func(v Value, env Env) error {
				if n := v.(int); n < 0 {
					return fmt.Errorf("%d is negative", n)
				}
				return nil
			},
		},
		{
			Name:     "boot.kernel.64bit",
			Type:     Bool,
			Doc:      "Starts the ARM cores in 64-bit mode and loads a 64-bit kernel.",
			Commands: []*Command{cmd("arm_64bit")},
			Default:  Const(false),
		},
		{
			Name:     "boot.kernel.filename",
			Type:     String,
			Doc:      "The kernel image to boot. The default depends on the board and on 64-bit mode.",
			Commands: []*Command{cmd("kernel")},
			Default: Rule{Deps: []string{"boot.kernel.64bit"}, Fn: func(env Env) Value {
				switch {
				case env.Bool("boot.kernel.64bit"):
					return "kernel8.img"
				case isPi4Family(env.Board):
					return "kernel7l.img"
				case env.Board.HasModel("pi2") || env.Board.HasModel("pi3") || env.Board.HasModel("pi02"):
					return "kernel7.img"
				}
				return "kernel.img"
			}},
		},
		{
			Name:     "boot.kernel.address",
			Type:     Hex,
			Doc:      "The address the kernel image is loaded at.",
			Commands: []*Command{cmd("kernel_address")},
			Default: Rule{Deps: []string{"boot.kernel.64bit"}, Fn: func(env Env) Value {
				if env.Bool("boot.kernel.64bit") {
					return 0x80000
				}
				return 0x8000
			}},
		},
		{
			Name:         "boot.kernel.cmdline",
			Type:         String,
			Doc:          "The file holding the kernel command line. It is saved with the configuration.",
			Commands:     []*Command{cmd("cmdline")},
			Default:      Const("cmdline.txt"),
			IncludedFile: true,
		},
		{
			Name:     "boot.initramfs.filename",
			Type:     String,
			Doc:      "The initial ramdisk and its load address, e.g. \"initrd.img followkernel\".",
			Commands: []*Command{cmd("initramfs")},
			Default:  Const(""),
		},
		{
			Name:     "boot.delay",
			Type:     Int,
			Doc:      "Seconds to wait before loading the kernel.",
			Commands: []*Command{cmd("boot_delay")},
			Default:  Const(1),
			Bounded:  true, Min: 0, Max: 60,
		},
		{
			Name:     "boot.delay.ms",
			Type:     Int,
			Doc:      "Milliseconds added to boot.delay.",
			Commands: []*Command{cmd("boot_delay_ms")},
			Default:  Const(0),
			Bounded:  true, Min: 0, Max: 999,
		},
		{
			Name:     "boot.splash.enabled",
			Type:     Bool,
			Doc:      "Shows the rainbow splash screen at power on.",
			Commands: []*Command{cmd("disable_splash")},
			Inverted: true,
			Default:  Const(true),
		},
		{
			Name:     "boot.prefix",
			Type:     String,
			Doc:      "A prefix applied to the kernel, initramfs and overlay paths.",
			Commands: []*Command{cmd("os_prefix")},
			Default:  Const(""),
		},
		{
			Name:     "serial.enabled",
			Type:     Bool,
			Doc:      "Enables the primary UART on the GPIO header. Off by default on boards where Bluetooth uses it.",
			Commands: []*Command{cmd("enable_uart")},
			Default:  Rule{Fn: func(env Env) Value { return !hasBluetooth(env.Board) }},
		},
		{
			Name:     "i2c.enabled",
			Type:     Bool,
			Doc:      "Enables the ARM I2C bus on GPIO 2 and 3.",
			Commands: []*Command{param("i2c_arm", "i2c", "i2c1")},
			Default:  Const(false),
		},
		{
			Name:     "i2c.baud",
			Type:     Int,
			Doc:      "The clock rate of the ARM I2C bus in Hz.",
			Commands: []*Command{param("i2c_arm_baudrate", "i2c_baudrate")},
			Default:  Const(100000),
			Bounded:  true, Min: 1000, Max: 3400000,
		},
		{
			Name:     "i2c.vc.enabled",
			Type:     Bool,
			Doc:      "Enables the VideoCore I2C bus. It is normally reserved for HAT EEPROMs.",
			Commands: []*Command{param("i2c_vc", "i2c0")},
			Default:  Const(false),
		},
		{
			Name:     "spi.enabled",
			Type:     Bool,
			Doc:      "Enables the SPI bus.",
			Commands: []*Command{param("spi")},
			Default:  Const(false),
		},
		{
			Name:     "i2s.enabled",
			Type:     Bool,
			Doc:      "Enables the I2S audio interface.",
			Commands: []*Command{param("i2s")},
			Default:  Const(false),
		},
		{
			Name:     "audio.enabled",
			Type:     Bool,
			Doc:      "Enables the analog audio output and HDMI audio.",
			Commands: []*Command{param("audio")},
			Default:  Const(false),
		},
		{
			Name:     "watchdog.enabled",
			Type:     Bool,
			Doc:      "Enables the hardware watchdog.",
			Commands: []*Command{param("watchdog")},
			Default:  Const(false),
		},
		{
			Name:     "audio.pwm.mode",
			Type:     Enum,
			Doc:      "The analog audio PWM algorithm.",
			Commands: []*Command{cmd("audio_pwm_mode")},
			Labels:   map[int]string{1: "legacy", 2: "noise-shaped"},
			Default:  Rule{Fn: func(Env) Value { return EnumValue{Value: 2, Label: "noise-shaped", Known: true} }},
		},
		{
			Name: "audio.dither",
			Type: TriState,
			Doc:  "Forces analog audio dithering on or off. auto leaves it to the firmware.",
			Commands: []*Command{
				{Name: "enable_audio_dither", Decoder: flagDecoder(true)},
				{Name: "disable_audio_dither", Decoder: flagDecoder(false)},
			},
			Encoder: ditherEncoder,
		},
		{
			Name:     "hat.eeprom.enabled",
			Type:     Bool,
			Doc:      "Reads the HAT identification EEPROM at boot.",
			Commands: []*Command{cmd("force_eeprom_read")},
			Default:  Const(true),
		},
		{
			Name:     "video.overscan.enabled",
			Type:     Bool,
			Doc:      "Adds black borders so the picture fits on TVs that crop it.",
			Commands: []*Command{cmd("disable_overscan")},
			Inverted: true,
			Default:  Const(true),
		},
		overscan("left"),
		overscan("right"),
		overscan("top"),
		overscan("bottom"),
		{
			Name:     "video.framebuffer.width",
			Type:     Int,
			Doc:      "The console framebuffer width in pixels. 0 follows the display.",
			Commands: []*Command{cmd("framebuffer_width")},
			Default:  Const(0),
		},
		{
			Name:     "video.framebuffer.height",
			Type:     Int,
			Doc:      "The console framebuffer height in pixels. 0 follows the display.",
			Commands: []*Command{cmd("framebuffer_height")},
			Default:  Const(0),
		},
		{
			Name:     "video.framebuffer.depth",
			Type:     Enum,
			Doc:      "The console framebuffer colour depth.",
			Commands: []*Command{cmd("framebuffer_depth")},
			Labels:   map[int]string{8: "8-bit", 16: "16-bit", 24: "24-bit", 32: "32-bit"},
			Default:  Rule{Fn: func(Env) Value { return EnumValue{Value: 16, Label: "16-bit", Known: true} }},
		},
		{
			Name:     "video.tv.enabled",
			Type:     Bool,
			Doc:      "Enables the composite video output. Off by default on boards where it costs performance.",
			Commands: []*Command{cmd("enable_tvout")},
			Default:  Rule{Fn: func(env Env) Value { return !isPi4Family(env.Board) }},
		},
		{
			Name:     "video.tv.mode",
			Type:     Enum,
			Doc:      "The composite video standard.",
			Commands: []*Command{cmd("sdtv_mode")},
			Labels: map[int]string{
				0: "NTSC", 1: "NTSC-J", 2: "PAL", 3: "PAL-M",
				16: "NTSC-P", 18: "PAL-P",
			},
			Default: Rule{Fn: func(Env) Value { return EnumValue{Value: 0, Label: "NTSC", Known: true} }},
		},
		{
			Name:     "video.tv.aspect",
			Type:     Enum,
			Doc:      "The composite video aspect ratio.",
			Commands: []*Command{cmd("sdtv_aspect")},
			Labels:   map[int]string{1: "4:3", 2: "14:9", 3: "16:9"},
			Default:  Rule{Fn: func(Env) Value { return EnumValue{Value: 1, Label: "4:3", Known: true} }},
		},
		{
			Name:     "video.tv.colorburst",
			Type:     Bool,
			Doc:      "Includes the colour burst in the composite signal.",
			Commands: []*Command{cmd("sdtv_disable_colourburst")},
			Inverted: true,
			Default:  Const(true),
		},
		{
			Name:     "video.display.rotate",
			Type:     Enum,
			Doc:      "Rotates or flips the display. Combined values are passed through as numbers.",
			Commands: []*Command{cmd("display_rotate")},
			Labels: map[int]string{
				0: "0", 1: "90", 2: "180", 3: "270",
				0x10000: "hflip", 0x20000: "vflip",
			},
			Default: Rule{Fn: func(Env) Value { return EnumValue{Value: 0, Label: "0", Known: true} }},
		},
		{
			Name:     "video.cec.enabled",
			Type:     Bool,
			Doc:      "Enables HDMI CEC.",
			Commands: []*Command{cmd("hdmi_ignore_cec")},
			Inverted: true,
			Default:  Const(true),
		},
		{
			Name:     "video.cec.init",
			Type:     Bool,
			Doc:      "Sends the CEC active-source message at boot, switching the TV to this input.",
			Commands: []*Command{cmd("hdmi_ignore_cec_init")},
			Inverted: true,
			Default:  Const(true),
		},
		{
			Name:     "video.cec.name",
			Type:     String,
			Doc:      "The name announced over CEC.",
			Commands: []*Command{cmd("cec_osd_name")},
			Default:  Const("Raspberry Pi"),
			Check: func(v Value, _ Env) error {
				if len(v.(string)) > 14 {
					return fmt.Errorf("CEC names are limited to 14 characters")
				}
				return nil
			},
		},
		{
			Name:     "video.hdmi.safe",
			Type:     Bool,
			Doc:      "Uses the most compatible HDMI settings.",
			Commands: []*Command{cmd("hdmi_safe")},
			Default:  Const(false),
		},
		{
			Name:     "video.hdmi.4kp60",
			Type:     Bool,
			Doc:      "Allows 4K at 60Hz on the first HDMI output. Raises the core clock.",
			Commands: []*Command{cmd("hdmi_enable_4kp60")},
			Default:  Const(false),
			Check: func(v Value, env Env) error {
				if v.(bool) && !isPi4Family(env.Board) && len(env.Board.Models) > 0 {
					return fmt.Errorf("only supported on Pi 4 boards")
				}
				return nil
			},
		},
		license("mpg2", "decode_MPG2"),
		license("wvc1", "decode_WVC1"),
		{
			Name:     "cpu.turbo.enabled",
			Type:     Bool,
			Doc:      "Runs the CPU at its maximum frequency permanently.",
			Commands: []*Command{cmd("force_turbo")},
			Default:  Const(false),
		},
		{
			Name:     "cpu.turbo.initial",
			Type:     Int,
			Doc:      "Seconds of turbo mode after boot.",
			Commands: []*Command{cmd("initial_turbo")},
			Default:  Const(0),
			Bounded:  true, Min: 0, Max: 60,
		},
		{
			Name:     "cpu.freq.max",
			Type:     Int,
			Doc:      "The maximum ARM frequency in MHz.",
			Commands: []*Command{cmd("arm_freq")},
			Default:  Rule{Fn: func(env Env) Value { return defaultArmFreq(env.Board) }},
		},
		{
			Name:     "cpu.freq.min",
			Type:     Int,
			Doc:      "The idle ARM frequency in MHz. Never above cpu.freq.max.",
			Commands: []*Command{cmd("arm_freq_min")},
			Default: Rule{Deps: []string{"cpu.freq.max"}, Fn: func(env Env) Value {
				floor := 700
				if isPi4Family(env.Board) {
					floor = 600
				}
				return min(floor, env.Int("cpu.freq.max"))
			}},
			Check: func(v Value, env Env) error {
				if limit := env.Int("cpu.freq.max"); v.(int) > limit {
					return fmt.Errorf("%d is above cpu.freq.max (%d)", v.(int), limit)
				}
				return nil
			},
		},
		{
			Name:     "cpu.voltage",
			Type:     Int,
			Doc:      "ARM core voltage adjustment in 25mV steps.",
			Commands: []*Command{cmd("over_voltage")},
			Default:  Const(0),
			Bounded:  true, Min: -16, Max: 8,
		},
		{
			Name:     "cpu.temp.limit",
			Type:     Int,
			Doc:      "The SoC temperature in Celsius at which the firmware throttles.",
			Commands: []*Command{cmd("temp_limit")},
			Default:  Const(85),
			Bounded:  true, Min: 60, Max: 85,
		},
	}
	for _, out := range []int{0, 1} {
		settings = append(settings, hdmiOutput(out)...)
	}
	return settings
}

func gpuMem() *Setting {
	return &Setting{
		Name: "gpu.mem",
		Type: Int,
		Doc: "Memory reserved for the GPU in MB. The default is 64 (76 on boards with 1GB or more) " +
			"and at least 128 with the camera enabled.",
		Commands: []*Command{
			rootCmd("gpu_mem"),
			{Name: "gpu_mem_256", RootOnly: true, Priority: 1, When: memIs(256)},
			{Name: "gpu_mem_512", RootOnly: true, Priority: 1, When: memIs(512)},
			{Name: "gpu_mem_1024", RootOnly: true, Priority: 1, When: memAtLeast(1024)},
		},
		Default: Rule{Deps: []string{"camera.enabled"}, Fn: func(env Env) Value {
			base := 64
			if env.Board.Memory >= 1024 {
				base = 76
			}
			if env.Bool("camera.enabled") {
				return max(base, 128)
			}
			return base
		}},
		Check: func(v Value, env Env) error {
			n := v.(int)
			limit := 512
			switch env.Board.Memory {
			case 256:
				limit = 128
			case 512:
				limit = 384
			}
			if n < 16 || n > limit {
				return fmt.Errorf("%d is outside 16..%d", n, limit)
			}
			if cam, _ := env.Get("camera.enabled").(bool); cam && n < 64 {
				return fmt.Errorf("the camera needs at least 64MB of GPU memory")
			}
			return nil
		},
	}
}

func firmwareFile(base, ext string) func(env Env) Value {
	return func(env Env) Value {
		var variant string
		switch {
		case env.Int("gpu.mem") <= 16:
			variant = "cd"
		case env.Bool("boot.debug.enabled"):
			variant = "db"
		case env.Bool("camera.enabled"):
			variant = "x"
		}
		if isPi4Family(env.Board) {
			return base + "4" + variant + ext
		}
		if variant != "" {
			variant = "_" + variant
		}
		return base + variant + ext
	}
}

func defaultArmFreq(ctx bootcfg.Context) int {
	switch {
	case ctx.HasModel("pi400"):
		return 1800
	case ctx.HasModel("pi4"), ctx.HasModel("cm4"):
		return 1500
	case ctx.HasModel("pi3+"):
		return 1400
	case ctx.HasModel("pi3"):
		return 1200
	case ctx.HasModel("pi0"), ctx.HasModel("pi0w"), ctx.HasModel("pi02"):
		return 1000
	case ctx.HasModel("pi2"):
		return 900
	}
	return 700
}

func overscan(side string) *Setting {
	return &Setting{
		Name:     "video.overscan." + side,
		Type:     Int,
		Doc:      "Pixels of black border on the " + side + " edge when overscan is enabled.",
		Commands: []*Command{cmd("overscan_" + side)},
		Default: Rule{Deps: []string{"video.overscan.enabled"}, Fn: func(env Env) Value {
			if env.Bool("video.overscan.enabled") {
				return 48
			}
			return 0
		}},
	}
}

var licenseKey = regexp.MustCompile(`^0x[0-9a-fA-F]{8}$`)

func license(codec, directive string) *Setting {
	return &Setting{
		Name:     "video.license." + codec,
		Type:     List,
		Doc:      "Licence keys for hardware " + strings.ToUpper(codec) + " decoding, one per board.",
		Commands: []*Command{cmd(directive)},
		Default:  Rule{Fn: func(Env) Value { return []string{} }},
		Check: func(v Value, _ Env) error {
			keys := v.([]string)
			if len(keys) > 8 {
				return fmt.Errorf("at most 8 keys are allowed")
			}
			for _, k := range keys {
				if !licenseKey.MatchString(k) {
					return fmt.Errorf("%q is not a licence key", k)
				}
			}
			return nil
		},
	}
}

const ignoreEDIDMagic = 0xa5000080

func hdmiOutput(out int) []*Setting {
	prefix := "video.hdmi" + strconv.Itoa(out) + "."
	group := prefix + "group"
	return []*Setting{
		{
			Name:     group,
			Type:     Enum,
			Doc:      "The HDMI mode family: CEA for TVs, DMT for monitors.",
			Commands: []*Command{cmd("hdmi_group")},
			Index:    out, Indexed: true,
			Labels:  map[int]string{0: "auto", 1: "CEA", 2: "DMT"},
			Default: Rule{Fn: func(Env) Value { return EnumValue{Value: 0, Label: "auto", Known: true} }},
		},
		{
			Name:     prefix + "mode",
			Type:     Int,
			Doc:      "The HDMI mode number within the group. 0 uses the display's preferred mode.",
			Commands: []*Command{cmd("hdmi_mode")},
			Index:    out, Indexed: true,
			Default: Const(0),
			Check: func(v Value, env Env) error {
				n := v.(int)
				limit := 107
				if env.Int(group) == 2 {
					limit = 87
				}
				if n < 0 || n > limit {
					return fmt.Errorf("%d is outside 0..%d for the selected group", n, limit)
				}
				return nil
			},
		},
		{
			Name:     prefix + "drive",
			Type:     Enum,
			Doc:      "Forces DVI (no audio) or HDMI signalling.",
			Commands: []*Command{cmd("hdmi_drive")},
			Index:    out, Indexed: true,
			Labels:  map[int]string{0: "auto", 1: "DVI", 2: "HDMI"},
			Default: Rule{Fn: func(Env) Value { return EnumValue{Value: 0, Label: "auto", Known: true} }},
		},
		{
			Name:     prefix + "boost",
			Type:     Int,
			Doc:      "HDMI signal strength. Ignored by Pi 4 boards.",
			Commands: []*Command{cmd("config_hdmi_boost")},
			Index:    out, Indexed: true,
			Default: Rule{Fn: func(env Env) Value {
				if isPi4Family(env.Board) {
					return 0
				}
				return 5
			}},
			Bounded: true, Min: 0, Max: 11,
		},
		{
			Name: prefix + "hotplug",
			Type: Enum,
			Doc:  "Whether to trust the HDMI hotplug signal, assume a display is present, or assume none is.",
			Commands: []*Command{
				{Name: "hdmi_force_hotplug", Decoder: hotplugDecoder(1)},
				{Name: "hdmi_ignore_hotplug", Decoder: hotplugDecoder(2)},
			},
			Index: out, Indexed: true,
			Labels:  map[int]string{0: "auto", 1: "force", 2: "ignore"},
			Default: Rule{Fn: func(Env) Value { return EnumValue{Value: 0, Label: "auto", Known: true} }},
			Encoder: hotplugEncoder,
		},
		{
			Name:     prefix + "edid.ignore",
			Type:     Bool,
			Doc:      "Ignores the display's EDID and uses the configured mode.",
			Commands: []*Command{{Name: "hdmi_ignore_edid", Decoder: edidDecoder}},
			Index:    out, Indexed: true,
			Default: Const(false),
			Encoder: edidEncoder,
		},
	}
}

// flagDecoder decodes a directive that only means something when non-zero.
func flagDecoder(value bool) func(*Setting, string, bool) (Value, bool, error) {
	return func(_ *Setting, arg string, _ bool) (Value, bool, error) {
		n, err := parseInt(arg)
		if err != nil {
			return nil, false, err
		}
		return value, n != 0, nil
	}
}

func ditherEncoder(s *Setting, v Value) ([]Assignment, error) {
	enable := Assignment{Command: s.Commands[0]}
	disable := Assignment{Command: s.Commands[1]}
	switch v {
	case true:
		enable.Arg, enable.Set = "1", true
	case false:
		disable.Arg, disable.Set = "1", true
	}
	return []Assignment{enable, disable}, nil
}

func hotplugDecoder(mode int) func(*Setting, string, bool) (Value, bool, error) {
	return func(s *Setting, arg string, _ bool) (Value, bool, error) {
		n, err := parseInt(arg)
		if err != nil {
			return nil, false, err
		}
		return s.enum(mode), n != 0, nil
	}
}

func hotplugEncoder(s *Setting, v Value) ([]Assignment, error) {
	force := Assignment{Command: s.Commands[0]}
	ignore := Assignment{Command: s.Commands[1]}
	switch v.(EnumValue).Value {
	case 0:
	case 1:
		force.Arg, force.Set = "1", true
	case 2:
		ignore.Arg, ignore.Set = "1", true
	default:
		return nil, &ValueError{Setting: s.Name, Msg: fmt.Sprintf("unknown hotplug mode %d", v.(EnumValue).Value)}
	}
	return []Assignment{force, ignore}, nil
}

func edidDecoder(_ *Setting, arg string, _ bool) (Value, bool, error) {
	n, err := parseInt(arg)
	if err != nil {
		return nil, false, err
	}
	return true, n == ignoreEDIDMagic, nil
}

func edidEncoder(s *Setting, v Value) ([]Assignment, error) {
	a := Assignment{Command: s.Commands[0]}
	if v.(bool) {
		a.Arg, a.Set = fmt.Sprintf("0x%x", ignoreEDIDMagic), true
	}
	return []Assignment{a}, nil
}
