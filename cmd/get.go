package cmd

import (
	"strings"

	"grimm.is/bootctl/internal/resolve"
	"grimm.is/bootctl/internal/setting"
	"grimm.is/bootctl/internal/store"
)

// RunGet prints the live values of the named settings. A single plain name
// prints the bare value; patterns and several names print a mapping.
// Names may use glob patterns, '*' stays within one dotted component.
func RunGet(st *store.Store, names []string) error {
	current, err := st.Current()
	if err != nil {
		return err
	}
	res, err := st.Resolve(current)
	if err != nil {
		return err
	}
	reg := st.Engine().Registry()

	if len(names) == 1 && !hasMeta(names[0]) {
		if _, err := reg.LookupByName(names[0]); err != nil {
			return err
		}
		return writeYAML(res.Value(names[0]))
	}

	out := map[string]setting.Value{}
	for _, name := range names {
		var entries []resolve.Entry
		if hasMeta(name) {
			if entries, err = res.Filter(reg, name); err != nil {
				return err
			}
		} else {
			if _, err := reg.LookupByName(name); err != nil {
				return err
			}
			e, _ := res.Get(name)
			entries = []resolve.Entry{e}
		}
		for _, e := range entries {
			out[e.Name] = e.Value
		}
	}
	if len(names) == 0 {
		for _, e := range res.All() {
			out[e.Name] = e.Value
		}
	}
	return writeYAML(out)
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
