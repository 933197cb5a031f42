package resolve

import (
	"strings"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/setting"
)

// hit is one line (or one dtparam token of a line) that binds to a setting
// command.
type hit struct {
	line    int
	token   int // index of the dtparam token, -1 for plain commands
	setting *setting.Setting
	cmd     *setting.Command
	arg     string
	hasArg  bool

	disabled bool
	// depth counts the filtering sections around the line.
	depth int
	// plain is true when no filtering section surrounds the line; HDMI
	// sections do not filter.
	plain bool
	file  string
}

func (h hit) location(t *bootcfg.Tree) bootcfg.Location {
	return t.Lines[h.line].Location()
}

// collect lists every binding of the lines visible under ctx, in document
// order. Disabled commands are reported too so the writer can reuse them.
func (e *Engine) collect(tree *bootcfg.Tree, ctx bootcfg.Context) []hit {
	var hits []hit
	overlay := ""

	tree.Visit(func(i int, path []int) {
		l := &tree.Lines[i]
		active := l.Kind == bootcfg.Command
		if !active && !l.Disabled {
			return
		}

		depth, hdmi := 0, -1
		for _, c := range tree.Conditions(path[len(path)-1]) {
			if !c.Matches(ctx) {
				return
			}
			if c.Filtering() {
				depth++
			}
			if n, ok := c.HDMIIndex(); ok {
				hdmi = n
			}
		}

		index, explicit := 0, l.HasIndex
		switch {
		case explicit:
			index = l.Index
		case hdmi >= 0:
			index = hdmi
		}
		base := hit{
			line:     i,
			token:    -1,
			disabled: !active,
			depth:    depth,
			plain:    depth == 0,
			file:     l.File,
		}

		name := strings.ToLower(l.Name)
		switch name {
		case "dtoverlay":
			if active {
				ov, _, _ := strings.Cut(l.Arg, ",")
				overlay = strings.TrimSpace(ov)
			}
			return
		case "dtparam":
			if overlay != "" {
				return
			}
			for tok, param := range splitParams(l.Arg) {
				p, v, has := strings.Cut(param, "=")
				key := "dtparam:" + strings.ToLower(strings.TrimSpace(p))
				h := base
				h.token, h.arg, h.hasArg = tok, strings.TrimSpace(v), has
				hits = append(hits, e.bind(key, h, index, explicit, l.File == tree.Root, ctx)...)
			}
		default:
			h := base
			h.arg, h.hasArg = l.Arg, l.HasArg
			hits = append(hits, e.bind(name, h, index, explicit, l.File == tree.Root, ctx)...)
		}
	})
	return hits
}

func (e *Engine) bind(key string, h hit, index int, explicit, inRoot bool, ctx bootcfg.Context) []hit {
	var out []hit
	for _, b := range e.registry.Bindings(key) {
		if !b.Setting.Addresses(index, explicit) {
			continue
		}
		if b.Command.RootOnly && !inRoot {
			continue
		}
		if !b.Command.Applies(ctx) {
			continue
		}
		h.setting, h.cmd = b.Setting, b.Command
		out = append(out, h)
	}
	return out
}

func splitParams(arg string) []string {
	var out []string
	for _, p := range strings.Split(arg, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// overlayAtEnd reports the overlay that a dtparam appended at the end of a
// scope would address.
func overlayAtEnd(tree *bootcfg.Tree, scope int) string {
	overlay := ""
	var walk func(sec int)
	walk = func(sec int) {
		for _, n := range tree.Sections[sec].Children {
			switch n.Kind {
			case bootcfg.LineNode:
				l := &tree.Lines[n.Index]
				if !l.Removed && l.Kind == bootcfg.Command && strings.EqualFold(l.Name, "dtoverlay") {
					ov, _, _ := strings.Cut(l.Arg, ",")
					overlay = strings.TrimSpace(ov)
				}
			case bootcfg.SectionNode:
				walk(n.Index)
			}
		}
	}
	walk(scope)
	return overlay
}
