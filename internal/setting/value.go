// Package setting defines the catalog of typed boot settings and the codecs
// that translate between setting values and directive arguments.
package setting

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Type is the declared value type of a setting.
type Type uint8

const (
	Bool Type = iota + 1
	Int
	Hex
	Enum
	String
	List
	// TriState is a boolean that may also be left to the firmware (nil).
	TriState
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Hex:
		return "hex"
	case Enum:
		return "enum"
	case String:
		return "string"
	case List:
		return "list"
	case TriState:
		return "tristate"
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Value is a decoded setting value: bool, int, string, []string, EnumValue,
// or nil for an undecided TriState.
type Value = any

// EnumValue is the value of an Enum setting. Known is false for raw values
// the catalog has no label for; they pass through unchanged.
type EnumValue struct {
	Value int
	Label string
	Known bool
}

func (e EnumValue) String() string {
	if e.Known {
		return e.Label
	}
	return strconv.Itoa(e.Value)
}

// MarshalYAML renders known values by label and unknown ones by number.
func (e EnumValue) MarshalYAML() (any, error) {
	if e.Known {
		return e.Label, nil
	}
	return e.Value, nil
}

// Equal compares two values of the same setting.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case EnumValue:
		bv, ok := b.(EnumValue)
		return ok && av.Value == bv.Value
	case []string:
		bv, ok := b.([]string)
		return ok && slices.Equal(av, bv)
	default:
		return a == b
	}
}

// Format renders a value for humans.
func Format(s *Setting, v Value) string {
	switch val := v.(type) {
	case nil:
		return "auto"
	case bool:
		if val {
			return "on"
		}
		return "off"
	case int:
		if s != nil && s.Type == Hex {
			return fmt.Sprintf("0x%x", val)
		}
		return strconv.Itoa(val)
	case []string:
		return strings.Join(val, ",")
	case fmt.Stringer:
		return val.String()
	case string:
		return val
	}
	return fmt.Sprint(v)
}

// parseInt accepts decimal and 0x-prefixed hexadecimal, as the firmware does.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	neg := false
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		neg, s = true, rest
	}
	var n int64
	var err error
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		n, err = strconv.ParseInt(rest, 16, 64)
	} else {
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if neg {
		n = -n
	}
	return int(n), nil
}

// parseSwitch reads the boolean spellings used by overlay parameters and by
// users.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "y", "1", "enable", "enabled":
		return true, nil
	case "off", "false", "no", "n", "0", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}
