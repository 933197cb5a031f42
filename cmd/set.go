package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"grimm.is/bootctl/internal/i18n"
	"grimm.is/bootctl/internal/setting"
	"grimm.is/bootctl/internal/store"
)

// RunSet changes settings of the live configuration. Changes come either
// from name=value arguments or from a YAML mapping in fromFile ("-" reads
// stdin). An empty value or null resets a setting to its default.
func RunSet(st *store.Store, args []string, fromFile string, backup bool) error {
	reg := st.Engine().Registry()

	var (
		changes map[string]setting.Value
		err     error
	)
	switch {
	case fromFile != "" && len(args) > 0:
		return fmt.Errorf("cannot combine --from with name=value arguments")
	case fromFile != "":
		changes, err = readChanges(reg, fromFile)
	case len(args) == 0:
		return fmt.Errorf("no settings given")
	default:
		changes, err = parseChanges(reg, args)
	}
	if err != nil {
		return err
	}

	result, err := st.Update(changes, backup)
	reportBackup(result.Backup)
	if err != nil {
		return err
	}
	if len(result.Written) == 0 {
		Printer.Fprintf(Stdout, i18n.MsgUnchanged, st.Writable())
		return nil
	}
	Printer.Fprintf(Stdout, i18n.MsgUpdated, strings.Join(result.Written, ", "))
	return nil
}

func parseChanges(reg *setting.Registry, args []string) (map[string]setting.Value, error) {
	changes := make(map[string]setting.Value, len(args))
	for _, arg := range args {
		name, text, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		s, err := reg.LookupByName(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			changes[s.Name] = nil
			continue
		}
		v, err := s.Parse(text)
		if err != nil {
			return nil, err
		}
		changes[s.Name] = v
	}
	return changes, nil
}

func readChanges(reg *setting.Registry, path string) (map[string]setting.Value, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	changes := make(map[string]setting.Value, len(raw))
	for name, in := range raw {
		s, err := reg.LookupByName(name)
		if err != nil {
			return nil, err
		}
		if in == nil {
			changes[s.Name] = nil
			continue
		}
		v, err := s.Coerce(in)
		if err != nil {
			return nil, err
		}
		changes[s.Name] = v
	}
	return changes, nil
}
