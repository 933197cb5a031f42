package cmd

import (
	"grimm.is/bootctl/internal/store"
)

// RunShow prints the settings of a stored configuration, or of the firmware
// defaults when name is "default". Patterns and all select settings as in
// RunStatus.
func RunShow(st *store.Store, name string, patterns []string, all bool) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	c, err := st.Side(name)
	if err != nil {
		return err
	}
	res, err := st.Resolve(c)
	if err != nil {
		return err
	}
	settings, err := selectSettings(st, res, patterns, all)
	if err != nil {
		return err
	}
	return writeYAML(settings)
}
