package bootcfg

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension is the filter family a section header belongs to. The firmware
// keeps one active filter per dimension, so a new header only replaces the
// filter of its own dimension.
type Dimension uint8

const (
	DimNone Dimension = iota + 1
	DimModel
	DimSerial
	DimHDMI
	DimEDID
	DimGPIO
	DimTryboot
)

func (d Dimension) String() string {
	switch d {
	case DimNone:
		return "none"
	case DimModel:
		return "model"
	case DimSerial:
		return "serial"
	case DimHDMI:
		return "hdmi"
	case DimEDID:
		return "edid"
	case DimGPIO:
		return "gpio"
	case DimTryboot:
		return "tryboot"
	}
	return "unknown"
}

// Condition is the predicate of a conditional section.
type Condition struct {
	Dim     Dimension
	Value   string
	Negated bool
}

// Context is the hardware a configuration is evaluated for.
type Context struct {
	// Models holds every board tag the hardware answers to, e.g. a 3B+
	// matches both "pi3" and "pi3+".
	Models    []string
	Serial    uint64
	HasSerial bool
	// Memory is the RAM size in MB.
	Memory  int
	EDID    string
	GPIO    map[int]bool
	Tryboot bool
}

// HasModel reports whether the context answers to the given board tag.
func (c Context) HasModel(tag string) bool {
	for _, m := range c.Models {
		if strings.EqualFold(m, tag) {
			return true
		}
	}
	return false
}

// Filtering reports whether the condition can exclude a board. HDMI sections
// only select an output and apply everywhere.
func (c Condition) Filtering() bool {
	return c.Dim != DimHDMI
}

// HDMIIndex returns the output number an HDMI section selects.
func (c Condition) HDMIIndex() (int, bool) {
	if c.Dim != DimHDMI {
		return 0, false
	}
	n, err := strconv.Atoi(c.Value)
	return n, err == nil
}

// Matches evaluates the condition against ctx.
func (c Condition) Matches(ctx Context) bool {
	var ok bool
	switch c.Dim {
	case DimNone:
		ok = false
	case DimModel:
		if v, found := strings.CutPrefix(c.Value, "board-type="); found {
			ok = ctx.HasModel("board-type=" + strings.ToLower(v))
		} else {
			ok = ctx.HasModel(c.Value)
		}
	case DimSerial:
		want, err := strconv.ParseUint(strings.TrimPrefix(c.Value, "0x"), 16, 64)
		ok = err == nil && ctx.HasSerial && ctx.Serial == want
	case DimHDMI:
		ok = true
	case DimEDID:
		ok = ctx.EDID != "" && ctx.EDID == c.Value
	case DimGPIO:
		pin, level, _ := strings.Cut(c.Value, "=")
		n, err := strconv.Atoi(pin)
		if err == nil && ctx.GPIO != nil {
			state, known := ctx.GPIO[n]
			ok = known && state == (level == "1")
		}
	case DimTryboot:
		ok = ctx.Tryboot
	}
	if c.Negated {
		return !ok
	}
	return ok
}

func (c Condition) String() string {
	var b strings.Builder
	if c.Negated {
		b.WriteByte('!')
	}
	switch c.Dim {
	case DimNone:
		b.WriteString("none")
	case DimHDMI:
		b.WriteString("HDMI:" + c.Value)
	case DimEDID:
		b.WriteString("EDID=" + c.Value)
	default:
		b.WriteString(c.Value)
	}
	return b.String()
}

// ParseCondition parses the text between the brackets of a section header.
// It returns all=true for "[all]".
func ParseCondition(text string) (cond Condition, all bool, err error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Condition{}, false, fmt.Errorf("empty section header")
	}
	lower := strings.ToLower(s)
	if lower == "all" {
		return Condition{}, true, nil
	}
	if rest, ok := strings.CutPrefix(s, "!"); ok {
		s = strings.TrimSpace(rest)
		lower = strings.ToLower(s)
		cond.Negated = true
		if lower == "all" {
			return Condition{}, false, fmt.Errorf("[all] cannot be negated")
		}
	}

	switch {
	case lower == "none":
		cond.Dim = DimNone
	case lower == "tryboot":
		cond.Dim, cond.Value = DimTryboot, "tryboot"
	case strings.HasPrefix(lower, "hdmi:"):
		v := s[len("hdmi:"):]
		if _, err := strconv.Atoi(v); err != nil {
			return Condition{}, false, fmt.Errorf("invalid HDMI output %q", v)
		}
		cond.Dim, cond.Value = DimHDMI, v
	case strings.HasPrefix(lower, "edid="):
		v := s[len("edid="):]
		if v == "" {
			return Condition{}, false, fmt.Errorf("empty EDID filter")
		}
		cond.Dim, cond.Value = DimEDID, v
	case strings.HasPrefix(lower, "gpio"):
		pin, level, ok := strings.Cut(lower[len("gpio"):], "=")
		if _, err := strconv.Atoi(pin); err != nil || !ok || (level != "0" && level != "1") {
			return Condition{}, false, fmt.Errorf("invalid GPIO filter %q", s)
		}
		cond.Dim, cond.Value = DimGPIO, pin+"="+level
	case strings.HasPrefix(lower, "0x"):
		if _, err := strconv.ParseUint(lower[2:], 16, 64); err != nil {
			return Condition{}, false, fmt.Errorf("invalid serial number %q", s)
		}
		cond.Dim, cond.Value = DimSerial, lower
	case strings.HasPrefix(lower, "board-type="):
		cond.Dim, cond.Value = DimModel, lower
	case isModelTag(lower):
		cond.Dim, cond.Value = DimModel, lower
	default:
		return Condition{}, false, fmt.Errorf("unknown section condition %q", s)
	}
	return cond, false, nil
}

func isModelTag(s string) bool {
	var rest string
	switch {
	case strings.HasPrefix(s, "pi"):
		rest = s[2:]
	case strings.HasPrefix(s, "cm"):
		rest = s[2:]
	default:
		return false
	}
	if rest == "" {
		return false
	}
	if rest[0] < '0' || rest[0] > '9' {
		return false
	}
	for _, r := range rest {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r == '+') {
			return false
		}
	}
	return true
}
