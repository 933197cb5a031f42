package main

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/bootctl/cmd"
	"grimm.is/bootctl/internal/brand"
	"grimm.is/bootctl/internal/i18n"
	"grimm.is/bootctl/internal/store"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "status":
		fs := newFlagSet("status")
		all := fs.Bool("all", false, "Show every setting, not only modified ones")
		fs.BoolVar(all, "a", false, "Show every setting (short)")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])

		st := openStore(opts)
		if err := cmd.RunStatus(st, fs.Args(), *all); err != nil {
			fail("Status failed", err)
		}

	case "show":
		fs := newFlagSet("show")
		all := fs.Bool("all", false, "Show every setting, not only modified ones")
		fs.BoolVar(all, "a", false, "Show every setting (short)")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])
		if fs.NArg() < 1 {
			printer.Fprintf(os.Stderr, i18n.MsgCommandUsage, brand.BinaryName+" show <name> [pattern...]")
			os.Exit(2)
		}

		st := openStore(opts)
		if err := cmd.RunShow(st, fs.Arg(0), fs.Args()[1:], *all); err != nil {
			fail("Show failed", err)
		}

	case "get":
		fs := newFlagSet("get")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])

		st := openStore(opts)
		if err := cmd.RunGet(st, fs.Args()); err != nil {
			fail("Get failed", err)
		}

	case "set":
		fs := newFlagSet("set")
		from := fs.String("from", "", "Read settings from a YAML file (- for stdin)")
		noBackup := fs.Bool("no-backup", false, "Do not back up an unsaved configuration")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])

		st := openStore(opts)
		if err := cmd.RunSet(st, fs.Args(), *from, !*noBackup); err != nil {
			fail("Set failed", err)
		}

	case "save":
		fs := newFlagSet("save")
		force := fs.Bool("force", false, "Overwrite an existing configuration")
		fs.BoolVar(force, "f", false, "Overwrite (short)")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])
		args := requireArgs(fs, 1, "save <name>")

		st := openStore(opts)
		if err := cmd.RunSave(st, args[0], *force); err != nil {
			fail("Save failed", err)
		}

	case "load":
		fs := newFlagSet("load")
		noBackup := fs.Bool("no-backup", false, "Do not back up an unsaved configuration")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])
		args := requireArgs(fs, 1, "load <name>")

		st := openStore(opts)
		if err := cmd.RunLoad(st, args[0], !*noBackup); err != nil {
			fail("Load failed", err)
		}

	case "list", "ls":
		fs := newFlagSet("list")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])

		st := openStore(opts)
		if err := cmd.RunList(st); err != nil {
			fail("List failed", err)
		}

	case "remove", "rm":
		fs := newFlagSet("remove")
		force := fs.Bool("force", false, "Ignore a missing configuration")
		fs.BoolVar(force, "f", false, "Ignore a missing configuration (short)")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])
		args := requireArgs(fs, 1, "remove <name>")

		st := openStore(opts)
		if err := cmd.RunRemove(st, args[0], *force); err != nil {
			fail("Remove failed", err)
		}

	case "rename", "mv":
		fs := newFlagSet("rename")
		force := fs.Bool("force", false, "Replace an existing destination")
		fs.BoolVar(force, "f", false, "Replace an existing destination (short)")
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])
		args := requireArgs(fs, 2, "rename <name> <to>")

		st := openStore(opts)
		if err := cmd.RunRename(st, args[0], args[1], *force); err != nil {
			fail("Rename failed", err)
		}

	case "diff", "files-diff":
		fs := newFlagSet(os.Args[1])
		opts := commonFlags(fs)
		fs.Parse(os.Args[2:])
		if n := fs.NArg(); n < 1 || n > 2 {
			printer.Fprintf(os.Stderr, i18n.MsgCommandUsage, brand.BinaryName+" "+os.Args[1]+" [left] <right>")
			os.Exit(2)
		}

		st := openStore(opts)
		run := cmd.RunDiff
		if os.Args[1] == "files-diff" {
			run = cmd.RunFilesDiff
		}
		if err := run(st, fs.Args()); err != nil {
			fail("Diff failed", err)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Fprintf(os.Stderr, i18n.MsgUnknownCmd, os.Args[1])
		printer.Fprintf(os.Stderr, i18n.MsgUsage, brand.BinaryName)
		os.Exit(1)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

// globalOptions are accepted by every command.
type globalOptions struct {
	configFile string
	verbose    bool
}

func commonFlags(fs *flag.FlagSet) *globalOptions {
	opts := &globalOptions{}
	fs.StringVar(&opts.configFile, "config", "", "Configuration file (default: system and user search paths)")
	fs.StringVar(&opts.configFile, "c", "", "Configuration file (short)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log at debug level")
	fs.BoolVar(&opts.verbose, "v", false, "Log at debug level (short)")
	return opts
}

func requireArgs(fs *flag.FlagSet, n int, usage string) []string {
	if fs.NArg() != n {
		printer.Fprintf(os.Stderr, i18n.MsgCommandUsage, brand.BinaryName+" "+usage)
		os.Exit(2)
	}
	return fs.Args()
}

func openStore(opts *globalOptions) *store.Store {
	st, err := cmd.Open(opts.configFile, opts.verbose)
	if err != nil {
		fail("Configuration failed", err)
	}
	return st
}

func fail(what string, err error) {
	printer.Fprintf(os.Stderr, i18n.MsgError, fmt.Errorf("%s: %w", what, err))
	os.Exit(1)
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  status      Show the board and the modified settings of the boot configuration
              Arguments: [pattern...]  Options: --all (-a)
  show        Show the modified settings of a stored configuration
              Arguments: <name> [pattern...]  Options: --all (-a)
  get         Print the value of settings (glob patterns allowed)
  set         Change settings: name=value ... (empty value resets)
              Options: --from <file.yaml>, --no-backup
  save        Store the current boot configuration under a name
              Options: --force (-f)
  load        Replace the boot configuration with a stored one
              Options: --no-backup
  list        List stored configurations (alias: ls)
  remove      Delete a stored configuration (alias: rm)
              Options: --force (-f)
  rename      Rename a stored configuration (alias: mv)
              Options: --force (-f)
  diff        Compare the settings of two configurations
  files-diff  Compare the files of two configurations

Every command accepts --config (-c) <file> and --verbose (-v). Diff sides name a stored
configuration, "default" for the firmware defaults, or are omitted for the
current configuration.

Examples:
  %s set video.hdmi0.group=DMT video.hdmi0.mode=16
  %s save before-overclock
  %s show before-overclock 'video.*'
  %s diff before-overclock
`, brand.Name, brand.Description, brand.LowerName, brand.LowerName, brand.LowerName, brand.LowerName, brand.LowerName)
}
