package bootcfg

import (
	"bytes"
	"fmt"
)

// NodeKind distinguishes the two kinds of section children.
type NodeKind uint8

const (
	LineNode NodeKind = iota
	SectionNode
)

// Node is a child of a Section: an index into Tree.Lines or Tree.Sections.
type Node struct {
	Kind  NodeKind
	Index int
}

// Section is a scope of lines sharing a condition. Section 0 is the scope
// of the root file. Include lines open a scope section for the included
// file; scope sections carry no condition.
type Section struct {
	Cond   Condition
	Parent int // -1 for the root
	// Header is the index of the header line in Tree.Lines, -1 for scopes
	// and for implicit sections.
	Header int
	// Implicit sections re-open a filter of another dimension after a
	// header closed the section it was nested in. They have no text.
	Implicit bool
	// Scope names the file whose top-level lines this section holds.
	Scope    string
	Children []Node
}

// IsScope reports whether the section is a file scope.
func (s *Section) IsScope() bool {
	return s.Scope != ""
}

// Line is a directive plus its provenance.
type Line struct {
	Directive
	File string
	// LineNo is the 1-based line number in File at parse time. Lines added
	// by edits have LineNo 0.
	LineNo  int
	Removed bool
}

// Location returns the file and line of l.
func (l *Line) Location() Location {
	return Location{File: l.File, Line: l.LineNo}
}

// Tree is a parsed configuration.
type Tree struct {
	Root     string
	Sections []Section
	Lines    []Line
	// Files holds the members read while parsing, in read order.
	Files FileSet
	// Added lists files created by edits that were absent when parsed.
	Added []string
}

// NewTree returns an empty configuration rooted at root.
func NewTree(root string) *Tree {
	root = CleanName(root)
	return &Tree{
		Root:     root,
		Sections: []Section{{Parent: -1, Header: -1, Scope: root}},
	}
}

// Clone returns a deep copy that can be edited independently.
func (t *Tree) Clone() *Tree {
	out := &Tree{
		Root:     t.Root,
		Sections: make([]Section, len(t.Sections)),
		Lines:    append([]Line(nil), t.Lines...),
		Files:    append(FileSet(nil), t.Files...),
		Added:    append([]string(nil), t.Added...),
	}
	for i, s := range t.Sections {
		s.Children = append([]Node(nil), s.Children...)
		out.Sections[i] = s
	}
	return out
}

// Visit calls fn for every live line in document order. path lists the
// sections enclosing the line, outermost first; a header line is reported
// inside the section it opens.
func (t *Tree) Visit(fn func(line int, path []int)) {
	t.visit(0, []int{0}, fn)
}

func (t *Tree) visit(sec int, path []int, fn func(int, []int)) {
	s := &t.Sections[sec]
	if s.Header >= 0 && !t.Lines[s.Header].Removed {
		fn(s.Header, path)
	}
	for _, n := range s.Children {
		switch n.Kind {
		case LineNode:
			if !t.Lines[n.Index].Removed {
				fn(n.Index, path)
			}
		case SectionNode:
			t.visit(n.Index, append(path[:len(path):len(path)], n.Index), fn)
		}
	}
}

// Conditions returns the conditions in force for a section, outermost first.
func (t *Tree) Conditions(sec int) []Condition {
	var conds []Condition
	for i := sec; i >= 0; i = t.Sections[i].Parent {
		s := &t.Sections[i]
		if !s.IsScope() {
			conds = append([]Condition{s.Cond}, conds...)
		}
	}
	return conds
}

// Unconditional reports whether no condition filters a section's lines.
// HDMI sections count as conditional: their lines address one output.
func (t *Tree) Unconditional(sec int) bool {
	return len(t.Conditions(sec)) == 0
}

// FileOf returns the file whose lines a section holds.
func (t *Tree) FileOf(sec int) string {
	for i := sec; i >= 0; i = t.Sections[i].Parent {
		if t.Sections[i].IsScope() {
			return t.Sections[i].Scope
		}
	}
	return t.Root
}

// ScopeOf returns the first scope section holding the named file.
func (t *Tree) ScopeOf(file string) (int, bool) {
	file = CleanName(file)
	for i := range t.Sections {
		if t.Sections[i].Scope == file {
			return i, true
		}
	}
	return -1, false
}

// HasFile reports whether the named file is part of the configuration,
// present or not.
func (t *Tree) HasFile(file string) bool {
	_, ok := t.ScopeOf(file)
	return ok
}

// Replace swaps the directive of an existing line.
func (t *Tree) Replace(line int, d Directive) {
	if d.EOL == "" {
		d.EOL = t.Lines[line].EOL
	}
	t.Lines[line].Directive = d
}

// Remove deletes a line from the rendered output.
func (t *Tree) Remove(line int) {
	t.Lines[line].Removed = true
}

// Append adds d as the last child of a section and returns its line index.
func (t *Tree) Append(sec int, d Directive) int {
	if d.EOL == "" {
		d.EOL = "\n"
	}
	idx := len(t.Lines)
	t.Lines = append(t.Lines, Line{Directive: d, File: t.FileOf(sec)})
	t.Sections[sec].Children = append(t.Sections[sec].Children, Node{Kind: LineNode, Index: idx})
	return idx
}

// AppendUnconditional appends d at the end of a scope section. If the
// scope's text ends inside a conditional section, an [all] line is added
// first so that d is not filtered by it.
func (t *Tree) AppendUnconditional(scope int, d Directive) int {
	children := t.Sections[scope].Children
	for i := len(children) - 1; i >= 0; i-- {
		n := children[i]
		if n.Kind == LineNode && t.Lines[n.Index].Removed {
			continue
		}
		if n.Kind == SectionNode && !t.Sections[n.Index].IsScope() && t.hasLiveHeader(n.Index) {
			t.Append(scope, NewSectionEnd())
		}
		break
	}
	return t.Append(scope, d)
}

func (t *Tree) hasLiveHeader(sec int) bool {
	for i := sec; i >= 0; {
		s := &t.Sections[i]
		if s.Header >= 0 && !t.Lines[s.Header].Removed {
			return true
		}
		// Implicit sections are re-opened by some earlier header.
		if !s.Implicit {
			return false
		}
		i = s.Parent
	}
	return false
}

// AddFile makes an absent file part of the configuration by giving it an
// empty scope. The file is not referenced by any include line; callers use
// it for the root file of an empty configuration.
func (t *Tree) AddFile(name string) int {
	name = CleanName(name)
	if sec, ok := t.ScopeOf(name); ok {
		t.markAdded(name)
		return sec
	}
	sec := len(t.Sections)
	t.Sections = append(t.Sections, Section{Parent: 0, Header: -1, Scope: name})
	t.Sections[0].Children = append(t.Sections[0].Children, Node{Kind: SectionNode, Index: sec})
	t.markAdded(name)
	return sec
}

func (t *Tree) markAdded(name string) {
	if _, ok := t.Files.Get(name); ok {
		return
	}
	for _, a := range t.Added {
		if a == name {
			return
		}
	}
	t.Added = append(t.Added, name)
}

// Render serialises the tree back into files. Members whose bytes are
// unchanged keep their original modification time; edited and new members
// have a zero ModTime for the caller to stamp. A file included more than
// once is rendered from its first scope only.
func (t *Tree) Render() FileSet {
	first := map[string]int{}
	for i := range t.Sections {
		if s := &t.Sections[i]; s.IsScope() {
			if _, ok := first[s.Scope]; !ok {
				first[s.Scope] = i
			}
		}
	}

	bufs := map[string]*bytes.Buffer{}
	lastEOL := map[string]string{}
	t.Visit(func(i int, path []int) {
		for _, sec := range path {
			if s := &t.Sections[sec]; s.IsScope() && first[s.Scope] != sec {
				return
			}
		}
		l := &t.Lines[i]
		buf, ok := bufs[l.File]
		if !ok {
			buf = &bytes.Buffer{}
			bufs[l.File] = buf
		}
		if eol, seen := lastEOL[l.File]; seen && eol == "" {
			buf.WriteByte('\n')
		}
		buf.WriteString(l.Line())
		buf.WriteString(l.EOL)
		lastEOL[l.File] = l.EOL
	})

	var out FileSet
	emit := func(name string, orig File, existed bool) {
		var content []byte
		if buf, ok := bufs[name]; ok {
			content = buf.Bytes()
		}
		f := File{Name: name, Content: content}
		if content == nil {
			f.Content = []byte{}
		}
		if existed && bytes.Equal(orig.Content, f.Content) {
			f.ModTime = orig.ModTime
		}
		out = append(out, f)
	}
	for _, f := range t.Files {
		emit(f.Name, f, true)
	}
	for _, name := range t.Added {
		emit(name, File{}, false)
	}
	return out
}

// LineText returns the rendered text of a line, for messages.
func (t *Tree) LineText(line int) string {
	return t.Lines[line].Line()
}

func (t *Tree) String() string {
	var b bytes.Buffer
	for _, f := range t.Render() {
		fmt.Fprintf(&b, "==> %s <==\n%s", f.Name, f.Content)
	}
	return b.String()
}
