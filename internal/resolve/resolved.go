package resolve

import (
	"sort"

	"grimm.is/bootctl/internal/bootcfg"
	"grimm.is/bootctl/internal/setting"
)

// Entry is the resolved state of one setting.
type Entry struct {
	Name    string           `json:"name" yaml:"name"`
	Setting *setting.Setting `json:"-" yaml:"-"`
	Value   setting.Value    `json:"value" yaml:"value"`
	Default setting.Value    `json:"default" yaml:"default"`
	// Modified is true when Value differs from Default.
	Modified bool `json:"modified" yaml:"modified"`
	// Explicit is true when some line sets the value, even to the default.
	Explicit bool `json:"explicit" yaml:"explicit"`
	// Source is the line that set Value, nil for defaults.
	Source *bootcfg.Location `json:"source,omitempty" yaml:"source,omitempty"`
	// Lines lists every visible line bound to the setting.
	Lines []bootcfg.Location `json:"lines,omitempty" yaml:"lines,omitempty"`
	// Ambiguous is only set by lenient evaluation inside the writer.
	Ambiguous bool `json:"-" yaml:"-"`

	line int
}

// Resolved maps every setting of a registry to its value in one
// configuration.
type Resolved struct {
	Context bootcfg.Context
	entries map[string]*Entry
	names   []string
}

// Get returns one setting's entry.
func (r *Resolved) Get(name string) (Entry, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Value returns a setting's value, nil when unknown.
func (r *Resolved) Value(name string) setting.Value {
	if e, ok := r.entries[name]; ok {
		return e.Value
	}
	return nil
}

// All returns every entry sorted by name.
func (r *Resolved) All() []Entry {
	out := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, *r.entries[name])
	}
	return out
}

// Modified returns the entries whose value differs from their default.
func (r *Resolved) Modified() []Entry {
	var out []Entry
	for _, name := range r.names {
		if e := r.entries[name]; e.Modified {
			out = append(out, *e)
		}
	}
	return out
}

// Values returns a name to value map of every setting.
func (r *Resolved) Values() map[string]setting.Value {
	out := make(map[string]setting.Value, len(r.names))
	for name, e := range r.entries {
		out[name] = e.Value
	}
	return out
}

// Filter returns the entries whose names match a glob pattern.
func (r *Resolved) Filter(reg *setting.Registry, pattern string) ([]Entry, error) {
	matched, err := reg.Match(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(matched))
	for _, s := range matched {
		if e, ok := r.entries[s.Name]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

// Change is the pair of values a setting takes in two configurations.
type Change struct {
	Name  string        `json:"name" yaml:"name"`
	Left  setting.Value `json:"left" yaml:"left"`
	Right setting.Value `json:"right" yaml:"right"`
}

// Diff compares the modified settings of two configurations. A setting is
// reported when it is modified on either side and its values differ.
func Diff(left, right *Resolved) []Change {
	names := map[string]bool{}
	for _, e := range left.Modified() {
		names[e.Name] = true
	}
	for _, e := range right.Modified() {
		names[e.Name] = true
	}

	var out []Change
	for name := range names {
		l, r := left.Value(name), right.Value(name)
		if !setting.Equal(l, r) {
			out = append(out, Change{Name: name, Left: l, Right: r})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
