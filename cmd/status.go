package cmd

import (
	"fmt"

	"grimm.is/bootctl/internal/resolve"
	"grimm.is/bootctl/internal/setting"
	"grimm.is/bootctl/internal/store"
)

type boardStatus struct {
	Models []string `yaml:"models,flow"`
	Memory int      `yaml:"memory,omitempty"`
	Serial string   `yaml:"serial,omitempty"`
}

type statusReport struct {
	Board    boardStatus              `yaml:"board"`
	Active   string                   `yaml:"active,omitempty"`
	Settings map[string]setting.Value `yaml:"settings"`
}

// RunStatus prints the board, the bundle matching the live configuration
// and the live settings matching patterns, or every setting when patterns
// is empty. Only modified settings are shown unless all is set.
func RunStatus(st *store.Store, patterns []string, all bool) error {
	current, err := st.Current()
	if err != nil {
		return err
	}
	res, err := st.Resolve(current)
	if err != nil {
		return err
	}
	active, err := st.Active()
	if err != nil {
		return err
	}

	ctx := st.Board()
	report := statusReport{
		Board:  boardStatus{Models: ctx.Models, Memory: ctx.Memory},
		Active: active,
	}
	if ctx.HasSerial {
		report.Board.Serial = fmt.Sprintf("0x%08x", ctx.Serial)
	}

	if report.Settings, err = selectSettings(st, res, patterns, all); err != nil {
		return err
	}
	return writeYAML(report)
}

// selectSettings returns the values of the settings matching any of
// patterns, skipping unmodified ones unless all is set.
func selectSettings(st *store.Store, res *resolve.Resolved, patterns []string, all bool) (map[string]setting.Value, error) {
	entries := res.All()
	if len(patterns) > 0 {
		entries = nil
		reg := st.Engine().Registry()
		for _, pattern := range patterns {
			matched, err := res.Filter(reg, pattern)
			if err != nil {
				return nil, err
			}
			entries = append(entries, matched...)
		}
	}

	out := map[string]setting.Value{}
	for _, e := range entries {
		if all || e.Modified {
			out[e.Name] = e.Value
		}
	}
	return out, nil
}
