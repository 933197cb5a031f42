package setting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"grimm.is/bootctl/internal/bootcfg"
)

// Command binds a setting to one directive. Overlay parameters are bound
// through Param; their directive is always dtparam.
type Command struct {
	Name    string
	Param   string
	Aliases []string
	// RootOnly commands are only honoured in the root file.
	RootOnly bool
	// Priority orders commands of one setting; the highest present wins
	// regardless of section depth.
	Priority int
	// When restricts the command to some boards. Nil means always.
	When func(ctx bootcfg.Context) bool
	// Decoder replaces the type's default decoding.
	Decoder func(s *Setting, arg string, hasArg bool) (Value, bool, error)
}

// Key returns the lookup key of the command: the directive name, or
// "dtparam:<param>" for overlay parameters.
func (c *Command) Key() string {
	if c.Param != "" {
		return "dtparam:" + c.Param
	}
	return c.Name
}

// Applies reports whether the command is honoured on the board.
func (c *Command) Applies(ctx bootcfg.Context) bool {
	return c.When == nil || c.When(ctx)
}

// Assignment is the desired state of one command after encoding a value.
// Set=false means no active line for the command should remain.
type Assignment struct {
	Command *Command
	Arg     string
	Set     bool
}

// Rule computes a default. Fn may only read the settings named in Deps.
type Rule struct {
	Deps []string
	Fn   func(env Env) Value
}

// Const returns a rule with a fixed value.
func Const(v Value) Rule {
	return Rule{Fn: func(Env) Value { return v }}
}

// Env gives default rules and validators access to the board and to other
// settings' resolved values.
type Env struct {
	Board   bootcfg.Context
	values  map[string]Value
	allowed map[string]bool
	owner   string
}

// NewEnv returns an unrestricted environment over values.
func NewEnv(board bootcfg.Context, values map[string]Value) Env {
	return Env{Board: board, values: values}
}

func (e Env) restrict(owner string, deps []string) Env {
	e.owner = owner
	e.allowed = make(map[string]bool, len(deps))
	for _, d := range deps {
		e.allowed[d] = true
	}
	return e
}

// Get returns another setting's value. Reading a setting that is not a
// declared dependency is a programming error.
func (e Env) Get(name string) Value {
	if e.allowed != nil && !e.allowed[name] {
		panic(fmt.Sprintf("setting %s reads undeclared dependency %s", e.owner, name))
	}
	return e.values[name]
}

// Bool returns a boolean dependency.
func (e Env) Bool(name string) bool {
	v, _ := e.Get(name).(bool)
	return v
}

// Int returns an integer dependency.
func (e Env) Int(name string) int {
	switch v := e.Get(name).(type) {
	case int:
		return v
	case EnumValue:
		return v.Value
	}
	return 0
}

// String returns a string dependency.
func (e Env) String(name string) string {
	v, _ := e.Get(name).(string)
	return v
}

// Setting is one catalog entry.
type Setting struct {
	Name     string
	Type     Type
	Doc      string
	Commands []*Command
	// Indexed settings address one HDMI output: lines qualified with :Index,
	// or unqualified lines inside an [HDMI:Index] section. Unqualified lines
	// elsewhere address output 0.
	Index   int
	Indexed bool
	// Inverted booleans are stored as their negation (disable_* directives).
	Inverted bool
	Labels   map[int]string
	Min, Max int
	Bounded  bool
	Default  Rule
	// Check adds semantic validation beyond type and range.
	Check func(v Value, env Env) error
	// IncludedFile marks a setting whose value names another file of the
	// configuration.
	IncludedFile bool
	// Encoder replaces the default single-command encoding.
	Encoder func(s *Setting, v Value) ([]Assignment, error)
}

// DefaultValue evaluates the default rule.
func (s *Setting) DefaultValue(env Env) Value {
	if s.Default.Fn == nil {
		return s.zero()
	}
	return s.Default.Fn(env.restrict(s.Name, s.Default.Deps))
}

func (s *Setting) zero() Value {
	switch s.Type {
	case Bool:
		return false
	case Int, Hex:
		return 0
	case Enum:
		return s.enum(0)
	case String:
		return ""
	case List:
		return []string{}
	}
	return nil
}

func (s *Setting) enum(n int) EnumValue {
	label, ok := s.Labels[n]
	return EnumValue{Value: n, Label: label, Known: ok}
}

// Enum returns the EnumValue for a raw number.
func (s *Setting) Enum(n int) EnumValue {
	return s.enum(n)
}

// Directives returns the directive names the setting reads.
func (s *Setting) Directives() []string {
	var out []string
	for _, c := range s.Commands {
		if c.Param != "" {
			out = append(out, "dtparam="+c.Param)
			continue
		}
		name := c.Name
		if s.Indexed {
			name += ":" + strconv.Itoa(s.Index)
		}
		out = append(out, name)
	}
	return out
}

// Decode reads a directive argument. ok=false means the line is present but
// has no effect on the setting.
func (s *Setting) Decode(c *Command, arg string, hasArg bool) (v Value, ok bool, err error) {
	if c.Decoder != nil {
		v, ok, err = c.Decoder(s, arg, hasArg)
	} else {
		v, ok, err = s.decode(c, arg, hasArg)
	}
	if err != nil {
		return nil, false, &DecodeError{Setting: s.Name, Command: c.Key(), Raw: arg, Err: err}
	}
	return v, ok, nil
}

func (s *Setting) decode(c *Command, arg string, hasArg bool) (Value, bool, error) {
	switch s.Type {
	case Bool, TriState:
		var b bool
		if c.Param != "" {
			if !hasArg || arg == "" {
				b = true
			} else {
				var err error
				if b, err = parseSwitch(arg); err != nil {
					return nil, false, err
				}
			}
		} else {
			n, err := parseInt(arg)
			if err != nil {
				return nil, false, err
			}
			b = n != 0
		}
		if s.Inverted {
			b = !b
		}
		return b, true, nil
	case Int, Hex:
		n, err := parseInt(arg)
		if err != nil {
			return nil, false, err
		}
		return n, true, nil
	case Enum:
		n, err := parseInt(arg)
		if err != nil {
			return nil, false, err
		}
		return s.enum(n), true, nil
	case String:
		return arg, true, nil
	case List:
		return splitList(arg), true, nil
	}
	return nil, false, fmt.Errorf("unsupported type %s", s.Type)
}

func splitList(arg string) []string {
	out := []string{}
	for _, part := range strings.Split(arg, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Encode turns a value into the desired state of every command of the
// setting. The first command carries the value; the others are cleared so
// that they cannot override it.
func (s *Setting) Encode(v Value) ([]Assignment, error) {
	if err := s.checkType(v); err != nil {
		return nil, err
	}
	if s.Encoder != nil {
		return s.Encoder(s, v)
	}
	out := make([]Assignment, len(s.Commands))
	for i, c := range s.Commands {
		out[i] = Assignment{Command: c}
	}
	if v == nil {
		return out, nil
	}
	arg, err := s.formatArg(s.Commands[0], v)
	if err != nil {
		return nil, err
	}
	out[0].Arg, out[0].Set = arg, true
	return out, nil
}

func (s *Setting) formatArg(c *Command, v Value) (string, error) {
	switch val := v.(type) {
	case bool:
		if s.Inverted {
			val = !val
		}
		switch {
		case c.Param != "" && val:
			return "on", nil
		case c.Param != "":
			return "off", nil
		case val:
			return "1", nil
		}
		return "0", nil
	case int:
		if s.Type == Hex {
			return fmt.Sprintf("0x%x", val), nil
		}
		return strconv.Itoa(val), nil
	case EnumValue:
		return strconv.Itoa(val.Value), nil
	case string:
		return val, nil
	case []string:
		return strings.Join(val, ","), nil
	}
	return "", &ValueError{Setting: s.Name, Msg: fmt.Sprintf("cannot encode %T", v)}
}

func (s *Setting) checkType(v Value) error {
	ok := false
	switch v.(type) {
	case nil:
		ok = s.Type == TriState
	case bool:
		ok = s.Type == Bool || s.Type == TriState
	case int:
		ok = s.Type == Int || s.Type == Hex
	case EnumValue:
		ok = s.Type == Enum
	case string:
		ok = s.Type == String
	case []string:
		ok = s.Type == List
	}
	if !ok {
		return &ValueError{Setting: s.Name, Msg: fmt.Sprintf("%T is not a valid %s value", v, s.Type)}
	}
	return nil
}

// Validate checks a value against the setting's type, range and semantic
// rules. env supplies the other settings' values.
func (s *Setting) Validate(v Value, env Env) error {
	if err := s.checkType(v); err != nil {
		return err
	}
	if s.Bounded {
		if n, ok := v.(int); ok && (n < s.Min || n > s.Max) {
			return &ValueError{Setting: s.Name, Msg: fmt.Sprintf("%d is outside %d..%d", n, s.Min, s.Max)}
		}
	}
	if s.Check != nil {
		if err := s.Check(v, env); err != nil {
			var ve *ValueError
			if errors.As(err, &ve) {
				return err
			}
			return &ValueError{Setting: s.Name, Msg: err.Error()}
		}
	}
	return nil
}

// Parse reads a value typed by a user.
func (s *Setting) Parse(text string) (Value, error) {
	text = strings.TrimSpace(text)
	var (
		v   Value
		err error
	)
	switch s.Type {
	case Bool:
		v, err = parseSwitch(text)
	case TriState:
		if strings.EqualFold(text, "auto") || text == "" {
			return nil, nil
		}
		v, err = parseSwitch(text)
	case Int, Hex:
		v, err = parseInt(text)
	case Enum:
		for n, label := range s.Labels {
			if strings.EqualFold(label, text) {
				return s.enum(n), nil
			}
		}
		var n int
		n, err = parseInt(text)
		v = s.enum(n)
	case String:
		v = text
	case List:
		v = splitList(text)
	default:
		err = fmt.Errorf("unsupported type %s", s.Type)
	}
	if err != nil {
		return nil, &ValueError{Setting: s.Name, Msg: err.Error()}
	}
	return v, nil
}

// Coerce converts a value decoded from YAML or JSON input.
func (s *Setting) Coerce(in any) (Value, error) {
	switch val := in.(type) {
	case nil:
		if s.Type == TriState {
			return nil, nil
		}
		return nil, &ValueError{Setting: s.Name, Msg: "null is only valid for tri-state settings"}
	case string:
		return s.Parse(val)
	case bool:
		if s.Type == Bool || s.Type == TriState {
			return val, nil
		}
	case int:
		return s.coerceInt(val)
	case int64:
		return s.coerceInt(int(val))
	case uint64:
		return s.coerceInt(int(val))
	case float64:
		if val == float64(int(val)) {
			return s.coerceInt(int(val))
		}
	case []any:
		if s.Type == List {
			out := make([]string, 0, len(val))
			for _, item := range val {
				out = append(out, fmt.Sprint(item))
			}
			return out, nil
		}
	case []string:
		if s.Type == List {
			return val, nil
		}
	}
	return nil, &ValueError{Setting: s.Name, Msg: fmt.Sprintf("%v is not a valid %s value", in, s.Type)}
}

func (s *Setting) coerceInt(n int) (Value, error) {
	switch s.Type {
	case Int, Hex:
		return n, nil
	case Enum:
		return s.enum(n), nil
	case Bool, TriState:
		return n != 0, nil
	}
	return nil, &ValueError{Setting: s.Name, Msg: fmt.Sprintf("%d is not a valid %s value", n, s.Type)}
}
