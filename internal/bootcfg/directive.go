// Package bootcfg models the firmware boot configuration grammar.
//
// A configuration is one root file plus the files it includes. Parse turns
// them into a Tree: an arena of conditional sections and the lines they hold.
// Every physical line is kept, comments and blanks included, so that an
// unedited Tree renders back to the exact bytes it was parsed from.
package bootcfg

import (
	"strconv"
	"strings"
)

// Kind classifies a directive.
type Kind uint8

const (
	Blank Kind = iota
	Comment
	Command
	SectionStart
	SectionEnd
	Include
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case Command:
		return "command"
	case SectionStart:
		return "section"
	case SectionEnd:
		return "all"
	case Include:
		return "include"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MaxLineLength is the number of columns the firmware reads from each line.
const MaxLineLength = 80

// Directive is the parsed content of one line. Directives are values; edits
// produce new Directives through the constructors and With methods.
type Directive struct {
	Kind Kind

	// Command fields. A Comment may carry them too when its text is a
	// commented-out command; Disabled is set in that case.
	Name     string
	Index    int
	HasIndex bool
	Arg      string
	HasArg   bool
	// Sep is the separator between name and argument: '=' or ' '.
	Sep      byte
	Disabled bool

	Cond Condition // SectionStart
	Path string    // Include
	Text string    // Comment body after '#'

	// Raw is the original text of the line without its terminator. An empty
	// Raw on a non-blank directive means the line was produced by an edit and
	// is rendered from its fields.
	Raw string
	EOL string
}

// NewCommand returns an unconditional `name=arg` line.
func NewCommand(name, arg string) Directive {
	return Directive{Kind: Command, Name: name, Arg: arg, HasArg: true, Sep: '=', EOL: "\n"}
}

// NewIndexedCommand returns a `name:index=arg` line.
func NewIndexedCommand(name string, index int, arg string) Directive {
	d := NewCommand(name, arg)
	d.Index, d.HasIndex = index, true
	return d
}

// NewComment returns a `#text` line.
func NewComment(text string) Directive {
	return Directive{Kind: Comment, Text: text, EOL: "\n"}
}

// NewSectionEnd returns an `[all]` line.
func NewSectionEnd() Directive {
	return Directive{Kind: SectionEnd, EOL: "\n"}
}

// Key identifies the target of a command: its lower-cased name plus index.
func (d Directive) Key() string {
	name := strings.ToLower(d.Name)
	if d.HasIndex {
		return name + ":" + strconv.Itoa(d.Index)
	}
	return name
}

// IsCommand reports whether the directive is an active command.
func (d Directive) IsCommand() bool {
	return d.Kind == Command
}

// Enable turns a disabled command back into an active one. The rendered
// text is the commented text without its '#'.
func (d Directive) Enable() Directive {
	if !d.Disabled {
		return d
	}
	out := d
	out.Kind = Command
	out.Disabled = false
	out.Text = ""
	out.Raw = ""
	return out
}

// Disable comments out an active command.
func (d Directive) Disable() Directive {
	if d.Kind != Command {
		return d
	}
	out := d
	out.Kind = Comment
	out.Disabled = true
	out.Text = d.commandText()
	out.Raw = ""
	return out
}

// WithArg returns a copy of the command with a new argument.
func (d Directive) WithArg(arg string) Directive {
	out := d
	out.Arg, out.HasArg = arg, true
	if out.Sep == 0 {
		out.Sep = '='
	}
	out.Raw = ""
	return out
}

// Line renders the directive without its terminator.
func (d Directive) Line() string {
	if d.Raw != "" || d.Kind == Blank {
		return d.Raw
	}
	switch d.Kind {
	case Comment:
		return "#" + d.Text
	case Command:
		return d.commandText()
	case SectionStart:
		return "[" + d.Cond.String() + "]"
	case SectionEnd:
		return "[all]"
	case Include:
		return "include " + d.Path
	}
	return ""
}

func (d Directive) commandText() string {
	var b strings.Builder
	b.WriteString(d.Name)
	if d.HasIndex {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(d.Index))
	}
	if d.HasArg {
		sep := d.Sep
		if sep == 0 {
			sep = '='
		}
		b.WriteByte(sep)
		b.WriteString(d.Arg)
	}
	return b.String()
}

func (d Directive) String() string {
	return d.Line()
}
