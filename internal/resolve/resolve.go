// Package resolve computes setting values from a parsed boot configuration
// and writes setting changes back into it.
package resolve

import (
	"sort"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/logging"
	"grimm.is/bootctl/internal/setting"
)

// Engine resolves configurations against a settings registry.
type Engine struct {
	registry *setting.Registry
	logger   *logging.Logger
}

// New returns an engine over r. A nil registry selects the built-in
// catalog.
func New(r *setting.Registry) *Engine {
	if r == nil {
		r = setting.Default()
	}
	return &Engine{registry: r, logger: logging.WithComponent("resolve")}
}

// Registry returns the engine's settings registry.
func (e *Engine) Registry() *setting.Registry {
	return e.registry
}

// Resolve evaluates every setting under the board context. Conflicting
// values at the same precedence level yield an AmbiguousSettingError; a
// line whose argument cannot be decoded yields a setting.DecodeError.
func (e *Engine) Resolve(tree *bootcfg.Tree, ctx bootcfg.Context) (*Resolved, error) {
	return e.evaluate(tree, ctx, true)
}

// Evaluate is Resolve without failures: conflicting lines resolve to the
// last one and undecodable lines are skipped. It suits callers that only
// need a best-effort view, such as locating files a configuration names.
func (e *Engine) Evaluate(tree *bootcfg.Tree, ctx bootcfg.Context) *Resolved {
	res, _ := e.evaluate(tree, ctx, false)
	return res
}

func (e *Engine) evaluate(tree *bootcfg.Tree, ctx bootcfg.Context, strict bool) (*Resolved, error) {
	type candidate struct {
		hit
		value setting.Value
	}
	cands := map[*setting.Setting][]candidate{}
	lines := map[*setting.Setting][]bootcfg.Location{}

	for _, h := range e.collect(tree, ctx) {
		if h.disabled {
			continue
		}
		lines[h.setting] = append(lines[h.setting], h.location(tree))
		v, ok, err := h.setting.Decode(h.cmd, h.arg, h.hasArg)
		if err != nil {
			if strict {
				return nil, err
			}
			continue
		}
		if ok {
			cands[h.setting] = append(cands[h.setting], candidate{hit: h, value: v})
		}
	}

	res := &Resolved{Context: ctx, entries: make(map[string]*Entry, e.registry.Len())}
	values := make(map[string]setting.Value, e.registry.Len())

	for _, s := range e.registry.Order() {
		entry := &Entry{Name: s.Name, Setting: s, Lines: lines[s]}

		if cs := cands[s]; len(cs) > 0 {
			// Highest command priority wins outright, then the most deeply
			// filtered line; the last line at that level is the winner.
			top := cs[:0:0]
			for _, c := range cs {
				if len(top) > 0 {
					t := top[0]
					if c.cmd.Priority < t.cmd.Priority || (c.cmd.Priority == t.cmd.Priority && c.depth < t.depth) {
						continue
					}
					if c.cmd.Priority > t.cmd.Priority || c.depth > t.depth {
						top = top[:0]
					}
				}
				top = append(top, c)
			}
			win := top[len(top)-1]
			for _, c := range top[:len(top)-1] {
				if setting.Equal(c.value, win.value) {
					continue
				}
				if strict {
					amb := &AmbiguousSettingError{Setting: s.Name}
					for _, t := range top {
						amb.Values = append(amb.Values, setting.Format(s, t.value))
						amb.Locations = append(amb.Locations, t.location(tree))
					}
					return nil, amb
				}
				entry.Ambiguous = true
				break
			}
			loc := win.location(tree)
			entry.Value, entry.Explicit, entry.Source = win.value, true, &loc
			entry.line = win.line
		}

		entry.Default = s.DefaultValue(setting.NewEnv(ctx, values))
		if !entry.Explicit {
			entry.Value = entry.Default
		}
		entry.Modified = !setting.Equal(entry.Value, entry.Default)
		values[s.Name] = entry.Value
		res.entries[s.Name] = entry
	}

	res.names = make([]string, 0, len(res.entries))
	for name := range res.entries {
		res.names = append(res.names, name)
	}
	sort.Strings(res.names)
	return res, nil
}

// Affected returns the settings a directive would influence under ctx.
// Overlay parameter lists are split into their parameters.
func (e *Engine) Affected(d bootcfg.Directive, ctx bootcfg.Context) []*setting.Setting {
	if !d.IsCommand() && !d.Disabled {
		return nil
	}
	tree := bootcfg.NewTree("config.txt")
	if d.Disabled {
		d = d.Enable()
	}
	tree.Append(0, d)

	seen := map[*setting.Setting]bool{}
	var out []*setting.Setting
	for _, h := range e.collect(tree, ctx) {
		if !seen[h.setting] {
			seen[h.setting] = true
			out = append(out, h.setting)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
