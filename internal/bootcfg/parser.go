package bootcfg

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ParseOption configures Parse.
type ParseOption func(*parser)

// ForBoard reads an included file only when the sections enclosing its
// include line select the board, as the firmware does. Only model, serial
// and [none] headers gate includes; filters that cannot be evaluated after
// boot (EDID, GPIO, tryboot) are taken as passing.
func ForBoard(ctx Context) ParseOption {
	return func(p *parser) { p.board = &ctx }
}

// Parse reads the configuration rooted at root from src, expanding include
// lines depth-first. A missing root yields an empty tree; a missing include
// yields an empty scope.
func Parse(src Source, root string, opts ...ParseOption) (*Tree, error) {
	p := &parser{src: src, tree: NewTree(root)}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.parseFile(p.tree.Root, 0); err != nil {
		return nil, err
	}
	return p.tree, nil
}

// ParseFiles parses an in-memory configuration.
func ParseFiles(files FileSet, root string, opts ...ParseOption) (*Tree, error) {
	return Parse(files, root, opts...)
}

type parser struct {
	src    Source
	tree   *Tree
	board  *Context
	active []string
}

// reads reports whether an include line in section sec is followed.
func (p *parser) reads(sec int) bool {
	if p.board == nil {
		return true
	}
	for _, c := range p.tree.Conditions(sec) {
		switch c.Dim {
		case DimNone, DimModel, DimSerial:
			if !c.Matches(*p.board) {
				return false
			}
		}
	}
	return true
}

func (p *parser) parseFile(name string, scope int) error {
	for _, a := range p.active {
		if a == name {
			return &SyntaxError{File: name, Msg: fmt.Sprintf("include cycle: %s -> %s", strings.Join(p.active, " -> "), name)}
		}
	}

	f, err := p.src.Open(name)
	if isNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	f.Name = name
	if _, seen := p.tree.Files.Get(name); !seen {
		p.tree.Files = append(p.tree.Files, f)
	}

	p.active = append(p.active, name)
	defer func() { p.active = p.active[:len(p.active)-1] }()

	stack := []int{scope}
	lineNo := 0
	for _, raw := range splitLines(f.Content) {
		lineNo++
		d, err := ParseLine(raw.text)
		if err != nil {
			return &SyntaxError{File: name, Line: lineNo, Text: raw.text, Msg: err.Error()}
		}
		d.Raw = raw.text
		d.EOL = raw.eol
		top := stack[len(stack)-1]

		switch d.Kind {
		case SectionStart:
			stack = p.openSection(stack, d, name, lineNo)
		case SectionEnd:
			stack = stack[:1]
			p.addLine(stack[0], d, name, lineNo)
		case Include:
			p.addLine(top, d, name, lineNo)
			if !p.reads(top) {
				continue
			}
			inc := CleanName(d.Path)
			sec := len(p.tree.Sections)
			p.tree.Sections = append(p.tree.Sections, Section{Parent: top, Header: -1, Scope: inc})
			p.tree.Sections[top].Children = append(p.tree.Sections[top].Children, Node{Kind: SectionNode, Index: sec})
			if err := p.parseFile(inc, sec); err != nil {
				if se, ok := err.(*SyntaxError); ok && se.Line == 0 {
					se.File, se.Line, se.Text = name, lineNo, raw.text
				}
				return err
			}
		default:
			p.addLine(top, d, name, lineNo)
		}
	}
	return nil
}

func (p *parser) addLine(sec int, d Directive, file string, lineNo int) int {
	idx := len(p.tree.Lines)
	p.tree.Lines = append(p.tree.Lines, Line{Directive: d, File: file, LineNo: lineNo})
	p.tree.Sections[sec].Children = append(p.tree.Sections[sec].Children, Node{Kind: LineNode, Index: idx})
	return idx
}

// openSection closes the open section of the header's dimension, opens the
// new one in its place and re-opens whatever was nested inside the closed
// one, since those filters are still in force.
func (p *parser) openSection(stack []int, d Directive, file string, lineNo int) []int {
	secs := &p.tree.Sections
	at := -1
	for i := len(stack) - 1; i >= 1; i-- {
		if (*secs)[stack[i]].Cond.Dim == d.Cond.Dim {
			at = i
			break
		}
	}
	var reopen []Condition
	if at >= 0 {
		for _, s := range stack[at+1:] {
			reopen = append(reopen, (*secs)[s].Cond)
		}
		stack = stack[:at]
	}

	header := len(p.tree.Lines)
	p.tree.Lines = append(p.tree.Lines, Line{Directive: d, File: file, LineNo: lineNo})
	stack = append(stack, p.pushSection(stack[len(stack)-1], Section{Cond: d.Cond, Header: header}))
	for _, c := range reopen {
		stack = append(stack, p.pushSection(stack[len(stack)-1], Section{Cond: c, Header: -1, Implicit: true}))
	}
	return stack
}

func (p *parser) pushSection(parent int, s Section) int {
	s.Parent = parent
	idx := len(p.tree.Sections)
	p.tree.Sections = append(p.tree.Sections, s)
	p.tree.Sections[parent].Children = append(p.tree.Sections[parent].Children, Node{Kind: SectionNode, Index: idx})
	return idx
}

type rawLine struct {
	text string
	eol  string
}

func splitLines(content []byte) []rawLine {
	var lines []rawLine
	for len(content) > 0 {
		i := bytes.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, rawLine{text: string(content)})
			break
		}
		text, eol := content[:i], "\n"
		if len(text) > 0 && text[len(text)-1] == '\r' {
			text, eol = text[:len(text)-1], "\r\n"
		}
		lines = append(lines, rawLine{text: string(text), eol: eol})
		content = content[i+1:]
	}
	return lines
}

// ParseLine classifies one line of text. The firmware only reads the first
// MaxLineLength columns and ignores anything after a '#'.
func ParseLine(raw string) (Directive, error) {
	line := strings.TrimRight(raw, " \t\r")
	if len(line) > MaxLineLength {
		line = line[:MaxLineLength]
	}
	line = strings.TrimLeft(line, " \t")

	if line == "" {
		return Directive{Kind: Blank}, nil
	}
	if line[0] == '#' {
		body := strings.TrimLeft(raw, " \t")[1:]
		d := Directive{Kind: Comment, Text: body}
		if cmd, ok := parseDisabled(strings.TrimSpace(body)); ok {
			d.Name, d.Index, d.HasIndex = cmd.Name, cmd.Index, cmd.HasIndex
			d.Arg, d.HasArg, d.Sep = cmd.Arg, cmd.HasArg, cmd.Sep
			d.Disabled = true
		}
		return d, nil
	}
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = strings.TrimRight(line[:i], " \t")
	}

	if line[0] == '[' {
		if !strings.HasSuffix(line, "]") {
			return Directive{}, fmt.Errorf("unterminated section header %q", line)
		}
		cond, all, err := ParseCondition(line[1 : len(line)-1])
		if err != nil {
			return Directive{}, err
		}
		if all {
			return Directive{Kind: SectionEnd}, nil
		}
		return Directive{Kind: SectionStart, Cond: cond}, nil
	}

	if rest, ok := cutKeyword(line, "include"); ok {
		if rest == "" {
			return Directive{}, fmt.Errorf("include without a file name")
		}
		return Directive{Kind: Include, Path: rest}, nil
	}
	if rest, ok := cutKeyword(line, "initramfs"); ok {
		return Directive{Kind: Command, Name: "initramfs", Arg: rest, HasArg: rest != "", Sep: ' '}, nil
	}
	return parseCommand(line)
}

func cutKeyword(line, keyword string) (string, bool) {
	if len(line) <= len(keyword) || !strings.EqualFold(line[:len(keyword)], keyword) {
		return "", false
	}
	if c := line[len(keyword)]; c != ' ' && c != '\t' {
		return "", false
	}
	return strings.TrimSpace(line[len(keyword):]), true
}

func parseCommand(line string) (Directive, error) {
	d := Directive{Kind: Command}
	name, arg, hasArg := strings.Cut(line, "=")
	name = strings.TrimSpace(name)
	if hasArg {
		d.Arg, d.HasArg, d.Sep = strings.TrimSpace(arg), true, '='
	}

	if n, idx, ok := strings.Cut(name, ":"); ok {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			return Directive{}, fmt.Errorf("invalid index %q on %q", idx, n)
		}
		name, d.Index, d.HasIndex = n, i, true
	}
	if !validName(name) {
		return Directive{}, fmt.Errorf("unrecognised directive %q", line)
	}
	d.Name = name
	return d, nil
}

// parseDisabled recognises a comment body that is a plain command. It is
// stricter than parseCommand so that prose is not mistaken for settings.
func parseDisabled(body string) (Directive, bool) {
	if body == "" || strings.ContainsAny(body, " \t#[") || !strings.Contains(body, "=") {
		return Directive{}, false
	}
	d, err := parseCommand(body)
	if err != nil || d.Arg == "" {
		return Directive{}, false
	}
	if c := d.Name[0]; c < 'a' || c > 'z' {
		return Directive{}, false
	}
	return d, true
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
