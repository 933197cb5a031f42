package resolve

import (
	"fmt"
	"sort"
	"strings"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/setting"
)

// Policy selects what happens to lines that no longer apply after an edit.
type Policy uint8

const (
	// PolicyComment comments stale lines out so they can be reused later.
	PolicyComment Policy = iota
	// PolicyDelete removes stale lines.
	PolicyDelete
)

func (p Policy) String() string {
	if p == PolicyDelete {
		return "delete"
	}
	return "comment"
}

// Options controls how Apply edits a configuration.
type Options struct {
	// Writable is the only file Apply may modify. Empty means the root file.
	Writable string
	Policy   Policy
	// Template is the initial content of the writable file when it does not
	// exist yet. It may hold comments, blank lines and plain commands.
	Template string
}

// Apply returns a copy of tree in which every setting named in changes
// takes its new value. A nil value, or a value equal to the setting's
// default, resets the setting by clearing its lines. The input tree is not
// modified.
func (e *Engine) Apply(tree *bootcfg.Tree, ctx bootcfg.Context, changes map[string]setting.Value, opts Options) (*bootcfg.Tree, error) {
	file := bootcfg.CleanName(opts.Writable)
	if opts.Writable == "" {
		file = tree.Root
	}
	scope, ok := tree.ScopeOf(file)
	if !ok {
		return nil, &ScopeError{File: file, Msg: fmt.Sprintf("%s is not part of the configuration", file)}
	}
	if !tree.Unconditional(scope) {
		return nil, &ScopeError{File: file, Msg: fmt.Sprintf("%s is included from a conditional section", file)}
	}

	current, err := e.evaluate(tree, ctx, false)
	if err != nil {
		return nil, err
	}

	changed := make([]*setting.Setting, 0, len(changes))
	for name := range changes {
		s, err := e.registry.LookupByName(name)
		if err != nil {
			return nil, err
		}
		changed = append(changed, s)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].Name < changed[j].Name })

	explicit := map[string]setting.Value{}
	for _, ent := range current.entries {
		if ent.Explicit {
			explicit[ent.Name] = ent.Value
		}
	}
	for _, s := range changed {
		if v := changes[s.Name]; v != nil {
			explicit[s.Name] = v
		} else {
			delete(explicit, s.Name)
		}
	}

	values, defaults := e.project(ctx, explicit)
	invalid := map[string]error{}
	env := setting.NewEnv(ctx, values)
	// Every explicit value is checked against the projected configuration,
	// so a change can invalidate a setting it does not name.
	for _, s := range e.registry.Order() {
		if v, ok := explicit[s.Name]; ok {
			if err := s.Validate(v, env); err != nil {
				invalid[s.Name] = err
			}
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidConfigurationError{Errors: invalid}
	}

	out := tree.Clone()
	w := &writer{engine: e, tree: out, ctx: ctx, scope: scope, file: file, opts: opts}
	for _, s := range changed {
		v, set := explicit[s.Name]
		if set && setting.Equal(v, defaults[s.Name]) {
			set = false
		}
		var as []setting.Assignment
		if set {
			if as, err = s.Encode(v); err != nil {
				return nil, err
			}
		} else {
			for _, c := range s.Commands {
				as = append(as, setting.Assignment{Command: c})
			}
		}
		if err := w.assign(s, as); err != nil {
			return nil, err
		}
	}

	after, err := e.evaluate(out, ctx, false)
	if err != nil {
		return nil, err
	}
	for _, s := range changed {
		ent := after.entries[s.Name]
		if !ent.Ambiguous && setting.Equal(ent.Value, values[s.Name]) {
			continue
		}
		se := &ScopeError{Setting: s.Name, File: file, Msg: fmt.Sprintf("cannot be changed by editing %s", file)}
		for _, loc := range ent.Lines {
			if loc.File != file {
				loc := loc
				se.Location = &loc
				break
			}
		}
		if se.Location == nil && ent.Source != nil {
			se.Location = ent.Source
		}
		return nil, se
	}

	e.logger.Debug("applied changes", "file", file, "settings", len(changed), "policy", opts.Policy.String())
	return out, nil
}

// project evaluates every setting given a set of explicit values and
// returns the resulting values and defaults.
func (e *Engine) project(ctx bootcfg.Context, explicit map[string]setting.Value) (values, defaults map[string]setting.Value) {
	values = make(map[string]setting.Value, e.registry.Len())
	defaults = make(map[string]setting.Value, e.registry.Len())
	for _, s := range e.registry.Order() {
		def := s.DefaultValue(setting.NewEnv(ctx, values))
		defaults[s.Name] = def
		if v, ok := explicit[s.Name]; ok {
			values[s.Name] = v
		} else {
			values[s.Name] = def
		}
	}
	return values, defaults
}

type writer struct {
	engine   *Engine
	tree     *bootcfg.Tree
	ctx      bootcfg.Context
	scope    int
	file     string
	opts     Options
	prepared bool
}

// editable reports whether the writer may touch a line: it lives in the
// writable file and no filtering section surrounds it.
func (w *writer) editable(h hit) bool {
	return h.file == w.file && h.plain
}

func (w *writer) assign(s *setting.Setting, as []setting.Assignment) error {
	for _, a := range as {
		var active, disabled []hit
		for _, h := range w.engine.collect(w.tree, w.ctx) {
			if h.setting != s || h.cmd != a.Command || !w.editable(h) {
				continue
			}
			if h.disabled {
				disabled = append(disabled, h)
			} else {
				active = append(active, h)
			}
		}

		stale := active
		if a.Set {
			switch {
			case len(active) > 0:
				last := active[len(active)-1]
				w.setArg(last, a.Arg)
				stale = active[:len(active)-1]
			default:
				if h, ok := reusable(w.tree, disabled, a.Arg); ok {
					w.enable(h, a.Arg)
				} else if err := w.append(s, a); err != nil {
					return err
				}
			}
		}

		// Later tokens first so that token indices stay valid.
		sort.Slice(stale, func(i, j int) bool {
			if stale[i].line != stale[j].line {
				return stale[i].line > stale[j].line
			}
			return stale[i].token > stale[j].token
		})
		for _, h := range stale {
			w.clear(h)
		}
	}
	return nil
}

// reusable picks a commented-out line to enable: one with the same argument
// if any, otherwise the last. Commented overlay parameter lists holding
// other parameters are never reused.
func reusable(tree *bootcfg.Tree, disabled []hit, arg string) (hit, bool) {
	var candidates []hit
	for _, h := range disabled {
		if h.token >= 0 && len(splitParams(tree.Lines[h.line].Arg)) != 1 {
			continue
		}
		candidates = append(candidates, h)
	}
	for _, h := range candidates {
		if h.arg == arg {
			return h, true
		}
	}
	if len(candidates) > 0 {
		return candidates[len(candidates)-1], true
	}
	return hit{}, false
}

func (w *writer) setArg(h hit, arg string) {
	d := w.tree.Lines[h.line].Directive
	if h.token < 0 {
		if d.HasArg && d.Arg == arg {
			return
		}
		w.tree.Replace(h.line, d.WithArg(arg))
		return
	}
	params := splitParams(d.Arg)
	name, _, _ := strings.Cut(params[h.token], "=")
	if p := strings.TrimSpace(name) + "=" + arg; p != params[h.token] {
		params[h.token] = p
		w.tree.Replace(h.line, d.WithArg(strings.Join(params, ",")))
	}
}

func (w *writer) enable(h hit, arg string) {
	d := w.tree.Lines[h.line].Directive.Enable()
	w.tree.Replace(h.line, d)
	h.disabled = false
	w.setArg(h, arg)
}

func (w *writer) clear(h hit) {
	d := w.tree.Lines[h.line].Directive
	if h.token >= 0 {
		if params := splitParams(d.Arg); len(params) > 1 {
			params = append(params[:h.token], params[h.token+1:]...)
			w.tree.Replace(h.line, d.WithArg(strings.Join(params, ",")))
			return
		}
	}
	if w.opts.Policy == PolicyDelete {
		w.tree.Remove(h.line)
		return
	}
	w.tree.Replace(h.line, d.Disable())
}

func (w *writer) append(s *setting.Setting, a setting.Assignment) error {
	if err := w.prepare(); err != nil {
		return err
	}
	c := a.Command
	if c.Param != "" {
		if overlayAtEnd(w.tree, w.scope) != "" {
			w.tree.AppendUnconditional(w.scope, bootcfg.NewCommand("dtoverlay", ""))
		}
		w.tree.AppendUnconditional(w.scope, bootcfg.NewCommand("dtparam", c.Param+"="+a.Arg))
		return nil
	}

	var d bootcfg.Directive
	if s.Indexed && s.Index != 0 {
		d = bootcfg.NewIndexedCommand(c.Name, s.Index, a.Arg)
	} else {
		d = bootcfg.NewCommand(c.Name, a.Arg)
	}
	if strings.EqualFold(c.Name, "initramfs") {
		d.Sep = ' '
	}
	w.tree.AppendUnconditional(w.scope, d)
	return nil
}

// prepare creates the writable file from the template the first time a
// line is appended to a file that does not exist yet.
func (w *writer) prepare() error {
	if w.prepared {
		return nil
	}
	w.prepared = true
	if _, ok := w.tree.Files.Get(w.file); ok {
		return nil
	}
	w.tree.AddFile(w.file)
	if w.opts.Template == "" {
		return nil
	}
	for i, text := range strings.Split(strings.TrimSuffix(w.opts.Template, "\n"), "\n") {
		d, err := bootcfg.ParseLine(text)
		if err != nil {
			return &bootcfg.SyntaxError{File: "template", Line: i + 1, Text: text, Msg: err.Error()}
		}
		switch d.Kind {
		case bootcfg.Blank, bootcfg.Comment, bootcfg.Command:
		default:
			return &bootcfg.SyntaxError{File: "template", Line: i + 1, Text: text, Msg: "templates may only hold comments and commands"}
		}
		d.Raw, d.EOL = text, "\n"
		w.tree.Append(w.scope, d)
	}
	return nil
}
