package resolve

import (
	"fmt"
	"sort"
	"strings"

	"grimm.is/bootctl/internal/bootcfg"
)

// AmbiguousSettingError reports conflicting explicit values for one setting
// at the same precedence level.
type AmbiguousSettingError struct {
	Setting   string
	Values    []string
	Locations []bootcfg.Location
}

func (e *AmbiguousSettingError) Error() string {
	locs := make([]string, len(e.Locations))
	for i, l := range e.Locations {
		locs[i] = fmt.Sprintf("%s (%s)", l, e.Values[i])
	}
	return fmt.Sprintf("%s is set to conflicting values at the same level: %s", e.Setting, strings.Join(locs, ", "))
}

// ScopeError reports a change that cannot be made by editing the writable
// file: the setting is overridden from a read-only file or a conditional
// section, or the writable file is not part of the configuration.
type ScopeError struct {
	Setting  string
	File     string
	Location *bootcfg.Location
	Msg      string
}

func (e *ScopeError) Error() string {
	var b strings.Builder
	if e.Setting != "" {
		b.WriteString(e.Setting)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Location != nil {
		fmt.Fprintf(&b, " (overridden at %s)", e.Location)
	}
	return b.String()
}

// InvalidConfigurationError collects the settings that rejected their new
// values.
type InvalidConfigurationError struct {
	Errors map[string]error
}

func (e *InvalidConfigurationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = e.Errors[name].Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}
