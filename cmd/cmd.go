// Package cmd implements the bootctl sub-commands. Each RunX function is a
// thin layer over internal/store that prints structured results as YAML.
package cmd

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"grimm.is/bootctl/internal/board"
	"grimm.is/bootctl/internal/config"
	"grimm.is/bootctl/internal/i18n"
	"grimm.is/bootctl/internal/logging"
	"grimm.is/bootctl/internal/store"
)

// Printer is the global message printer for the CLI
var Printer = i18n.NewCLIPrinter()

// Stdout receives command output. Tests replace it.
var Stdout io.Writer = os.Stdout

// Open loads the tool configuration, sets up logging and detects the
// board. An empty configFile reads the default search paths. Verbose logs
// at debug level whatever the configured level.
func Open(configFile string, verbose bool) (*store.Store, error) {
	paths := config.DefaultPaths()
	if configFile != "" {
		paths = []string{configFile}
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	if verbose {
		logging.Default().SetLevel(logging.LevelDebug)
	}

	info, err := board.Resolve(cfg.Board, logging.WithComponent("board"))
	if err != nil {
		return nil, err
	}
	return store.New(cfg, info.Context()), nil
}

// setupLogging installs the default logger. An unknown level keeps the
// default one; Validate already reported it as a warning.
func setupLogging(cfg *config.Config) {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = level
	}
	lc.JSON = cfg.LogJSON
	logging.SetDefault(logging.New(lc))
}

// writeYAML prints v as a YAML document.
func writeYAML(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = Stdout.Write(out)
	return err
}

func reportBackup(name string) {
	if name != "" {
		Printer.Fprintf(Stdout, i18n.MsgBackedUp, name)
	}
}
