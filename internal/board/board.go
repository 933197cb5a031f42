// Package board identifies the Raspberry Pi a configuration is evaluated
// for, from the firmware's device tree or from configured overrides.
package board

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/config"
	"grimm.is/bootctl/internal/logging"
)

// Info describes a board.
type Info struct {
	Revision  uint32   `json:"revision" yaml:"revision"`
	Type      int      `json:"type" yaml:"type"`
	Name      string   `json:"name" yaml:"name"`
	Models    []string `json:"models" yaml:"models"`
	Memory    int      `json:"memory" yaml:"memory"`
	Serial    uint64   `json:"serial" yaml:"serial"`
	HasSerial bool     `json:"-" yaml:"-"`
}

// Context returns the conditional-section context of the board.
func (i Info) Context() bootcfg.Context {
	return bootcfg.Context{
		Models:    append([]string(nil), i.Models...),
		Serial:    i.Serial,
		HasSerial: i.HasSerial,
		Memory:    i.Memory,
	}
}

type boardType struct {
	name string
	tags []string
}

// types maps new-style revision board types to names and the section tags
// the firmware matches them with.
var types = map[int]boardType{
	0x00: {"Model A", []string{"pi1"}},
	0x01: {"Model B", []string{"pi1"}},
	0x02: {"Model A+", []string{"pi1"}},
	0x03: {"Model B+", []string{"pi1"}},
	0x04: {"Pi 2 Model B", []string{"pi2"}},
	0x06: {"Compute Module 1", []string{"pi1"}},
	0x08: {"Pi 3 Model B", []string{"pi3"}},
	0x09: {"Pi Zero", []string{"pi0"}},
	0x0a: {"Compute Module 3", []string{"pi3"}},
	0x0c: {"Pi Zero W", []string{"pi0", "pi0w"}},
	0x0d: {"Pi 3 Model B+", []string{"pi3", "pi3+"}},
	0x0e: {"Pi 3 Model A+", []string{"pi3", "pi3+"}},
	0x10: {"Compute Module 3+", []string{"pi3"}},
	0x11: {"Pi 4 Model B", []string{"pi4"}},
	0x12: {"Pi Zero 2 W", []string{"pi0", "pi0w", "pi02"}},
	0x13: {"Pi 400", []string{"pi4", "pi400"}},
	0x14: {"Compute Module 4", []string{"pi4", "cm4"}},
	0x15: {"Compute Module 4S", []string{"pi4", "cm4s"}},
}

// modelTags expands a configured model tag into every tag the firmware
// would match for such a board.
var modelTags = map[string][]string{
	"pi0w":  {"pi0", "pi0w"},
	"pi02":  {"pi0", "pi0w", "pi02"},
	"pi3+":  {"pi3", "pi3+"},
	"pi400": {"pi4", "pi400"},
	"cm4":   {"pi4", "cm4"},
	"cm4s":  {"pi4", "cm4s"},
}

// FromRevision decodes a revision code.
func FromRevision(rev uint32) Info {
	rev &= 0xffffff // drop the warranty bits
	info := Info{Revision: rev}
	if rev&(1<<23) == 0 {
		// Old-style codes are all first generation boards.
		info.Type = -1
		info.Name = "Pi 1"
		info.Models = []string{"pi1"}
		switch rev {
		case 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9, 0x12, 0x15:
			info.Memory = 256
		default:
			info.Memory = 512
		}
		return info
	}

	info.Type = int(rev>>4) & 0xff
	info.Memory = 256 << ((rev >> 20) & 0x7)
	if t, ok := types[info.Type]; ok {
		info.Name = t.name
		info.Models = append([]string(nil), t.tags...)
	} else {
		info.Name = fmt.Sprintf("unknown board 0x%x", info.Type)
	}
	info.Models = append(info.Models, fmt.Sprintf("board-type=0x%x", info.Type))
	return info
}

// Detect reads the revision and serial number from a device tree root such
// as /proc/device-tree.
func Detect(root string) (Info, error) {
	data, err := os.ReadFile(filepath.Join(root, "system", "linux,revision"))
	if err != nil {
		return Info{}, fmt.Errorf("failed to read board revision: %w", err)
	}
	if len(data) < 4 {
		return Info{}, fmt.Errorf("board revision is %d bytes long", len(data))
	}
	info := FromRevision(binary.BigEndian.Uint32(data))

	if data, err := os.ReadFile(filepath.Join(root, "system", "linux,serial")); err == nil && len(data) >= 8 {
		info.Serial = binary.BigEndian.Uint64(data)
		info.HasSerial = true
	}
	return info, nil
}

// Resolve detects the board and applies the configured overrides. A failed
// detection is logged and yields a context that only answers to the
// overrides.
func Resolve(cfg config.BoardConfig, logger *logging.Logger) (Info, error) {
	if logger == nil {
		logger = logging.WithComponent("board")
	}
	info, err := Detect(cfg.DeviceTree)
	if err != nil {
		logger.Debug("board detection failed", "error", err)
	}

	if m := strings.ToLower(strings.TrimSpace(cfg.Model)); m != "" {
		tags, ok := modelTags[m]
		if !ok {
			tags = []string{m}
		}
		info.Models = append([]string(nil), tags...)
		info.Name = m
	}
	if s := strings.TrimSpace(cfg.Serial); s != "" {
		n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64)
		if err != nil {
			return Info{}, fmt.Errorf("invalid board serial %q: %w", s, err)
		}
		info.Serial, info.HasSerial = n, true
	}
	if cfg.Memory > 0 {
		info.Memory = cfg.Memory
	}
	logger.Debug("board", "name", info.Name, "models", strings.Join(info.Models, ","), "memory", info.Memory)
	return info, nil
}
