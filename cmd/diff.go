package cmd

import (
	"io"

	"grimm.is/bootctl/internal/i18n"
	"grimm.is/bootctl/internal/store"
)

// diffSides maps diff arguments onto store sides. With one argument the
// live configuration is compared against it.
func diffSides(args []string) (left, right string) {
	if len(args) == 1 {
		return "", args[0]
	}
	return args[0], args[1]
}

func sideName(name string) string {
	if name == "" {
		return "current"
	}
	return name
}

// RunDiff prints the settings that differ between two configurations.
func RunDiff(st *store.Store, args []string) error {
	left, right := diffSides(args)
	changes, err := st.Diff(left, right)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		Printer.Fprintf(Stdout, i18n.MsgNoDifferences, sideName(left), sideName(right))
		return nil
	}
	return writeYAML(changes)
}

// RunFilesDiff prints a unified diff of the files of two configurations.
func RunFilesDiff(st *store.Store, args []string) error {
	left, right := diffSides(args)
	text, err := st.FileDiff(left, right)
	if err != nil {
		return err
	}
	if text == "" {
		Printer.Fprintf(Stdout, i18n.MsgNoDifferences, sideName(left), sideName(right))
		return nil
	}
	_, err = io.WriteString(Stdout, text)
	return err
}
