package cmd

import (
	"grimm.is/bootctl/internal/i18n"
	"grimm.is/bootctl/internal/store"
)

// RunSave stores the live configuration as name.
func RunSave(st *store.Store, name string, force bool) error {
	if err := st.Save(name, force); err != nil {
		return err
	}
	Printer.Fprintf(Stdout, i18n.MsgSaved, name)
	return nil
}

// RunLoad replaces the live configuration with the bundle name.
func RunLoad(st *store.Store, name string, backup bool) error {
	saved, err := st.Load(name, backup)
	reportBackup(saved)
	if err != nil {
		return err
	}
	Printer.Fprintf(Stdout, i18n.MsgLoaded, name)
	return nil
}

// RunList prints the stored configurations.
func RunList(st *store.Store) error {
	entries, err := st.List()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	return writeYAML(entries)
}

// RunRemove deletes a stored configuration.
func RunRemove(st *store.Store, name string, force bool) error {
	if err := st.Remove(name, force); err != nil {
		return err
	}
	Printer.Fprintf(Stdout, i18n.MsgRemoved, name)
	return nil
}

// RunRename renames a stored configuration.
func RunRename(st *store.Store, name, to string, force bool) error {
	if err := st.Rename(name, to, force); err != nil {
		return err
	}
	Printer.Fprintf(Stdout, i18n.MsgRenamed, name, to)
	return nil
}
