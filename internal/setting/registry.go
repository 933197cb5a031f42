package setting

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/gobwas/glob"
)

// Registry is an immutable, validated set of settings.
type Registry struct {
	settings []*Setting
	byName   map[string]*Setting
	byKey    map[string][]*Setting
	// order is a topological order over default-rule dependencies.
	order []*Setting
}

// NewRegistry validates the catalog: unique names, known dependencies, and
// acyclic default rules.
func NewRegistry(settings ...*Setting) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Setting, len(settings)),
		byKey:  make(map[string][]*Setting),
	}
	var problems []string

	g := graph.New(func(s *Setting) string { return s.Name }, graph.Directed(), graph.PreventCycles())
	for _, s := range settings {
		if _, dup := r.byName[s.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate setting %s", s.Name))
			continue
		}
		if len(s.Commands) == 0 {
			problems = append(problems, fmt.Sprintf("%s has no directives", s.Name))
			continue
		}
		r.byName[s.Name] = s
		r.settings = append(r.settings, s)
		if err := g.AddVertex(s); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", s.Name, err)
		}
		for _, c := range s.Commands {
			r.addKey(c.Key(), s)
			for _, alias := range c.Aliases {
				r.addKey("dtparam:"+alias, s)
			}
		}
	}

	for _, s := range r.settings {
		for _, dep := range s.Default.Deps {
			if _, ok := r.byName[dep]; !ok {
				problems = append(problems, fmt.Sprintf("%s depends on unknown setting %s", s.Name, dep))
				continue
			}
			if err := g.AddEdge(dep, s.Name); err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					problems = append(problems, fmt.Sprintf("dependency %s -> %s creates a cycle", dep, s.Name))
					continue
				}
				if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
					return nil, fmt.Errorf("failed to add dependency %s -> %s: %w", dep, s.Name, err)
				}
			}
		}
	}
	if len(problems) > 0 {
		return nil, &CatalogError{Problems: problems}
	}

	names, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("failed to order settings: %w", err)
	}
	for _, name := range names {
		r.order = append(r.order, r.byName[name])
	}
	sort.Slice(r.settings, func(i, j int) bool { return r.settings[i].Name < r.settings[j].Name })
	return r, nil
}

func (r *Registry) addKey(key string, s *Setting) {
	for _, existing := range r.byKey[key] {
		if existing == s {
			return
		}
	}
	r.byKey[key] = append(r.byKey[key], s)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of the built-in catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(Catalog()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// All returns every setting sorted by name.
func (r *Registry) All() []*Setting {
	return append([]*Setting(nil), r.settings...)
}

// Order returns every setting in dependency order: each setting comes after
// the settings its default depends on.
func (r *Registry) Order() []*Setting {
	return append([]*Setting(nil), r.order...)
}

// Len returns the number of settings.
func (r *Registry) Len() int {
	return len(r.settings)
}

// LookupByName returns the named setting.
func (r *Registry) LookupByName(name string) (*Setting, error) {
	if s, ok := r.byName[name]; ok {
		return s, nil
	}
	return nil, &NotFoundError{Name: name}
}

// LookupByDirective returns the settings a directive name can influence.
// Overlay parameters are looked up as "dtparam:<param>"; plain "dtparam"
// returns every overlay-parameter setting.
func (r *Registry) LookupByDirective(name string) []*Setting {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "dtparam" {
		var out []*Setting
		for _, s := range r.settings {
			for _, c := range s.Commands {
				if c.Param != "" {
					out = append(out, s)
					break
				}
			}
		}
		return out
	}
	out := append([]*Setting(nil), r.byKey[name]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Bindings returns every setting command bound to a directive key.
func (r *Registry) Bindings(key string) []Binding {
	var out []Binding
	for _, s := range r.byKey[key] {
		for _, c := range s.Commands {
			if c.Key() == key || (c.Param != "" && containsAlias(c, key)) {
				out = append(out, Binding{Setting: s, Command: c})
			}
		}
	}
	return out
}

// Addresses reports whether a line addressing output index reaches the
// setting. explicit is true when the line carries its own :n qualifier.
func (s *Setting) Addresses(index int, explicit bool) bool {
	if s.Indexed {
		return s.Index == index
	}
	return !explicit || index == 0
}

func containsAlias(c *Command, key string) bool {
	for _, a := range c.Aliases {
		if "dtparam:"+a == key {
			return true
		}
	}
	return false
}

// Binding pairs a setting with one of its commands.
type Binding struct {
	Setting *Setting
	Command *Command
}

// Match returns the settings whose names match a glob pattern. A '*' does
// not cross a '.', use '**' for that.
func (r *Registry) Match(pattern string) ([]*Setting, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	var out []*Setting
	for _, s := range r.settings {
		if g.Match(s.Name) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Decode decodes a raw argument for a setting's primary directive.
func (r *Registry) Decode(s *Setting, raw string) (Value, error) {
	v, ok, err := s.Decode(s.Commands[0], raw, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.zero(), nil
	}
	return v, nil
}

// Encode encodes a value as the raw argument of a setting's primary
// directive. ok=false means the value is expressed by omitting it.
func (r *Registry) Encode(s *Setting, v Value) (raw string, ok bool, err error) {
	as, err := s.Encode(v)
	if err != nil {
		return "", false, err
	}
	for _, a := range as {
		if a.Set {
			return a.Arg, true, nil
		}
	}
	return "", false, nil
}
