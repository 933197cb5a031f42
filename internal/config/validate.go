package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"grimm.is/bootctl/internal/logging"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field    string
	Message  string
	Severity string // "error" (default), "warning"
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if any entry is not a warning.
func (e ValidationErrors) HasErrors() bool {
	for _, err := range e {
		if err.Severity != "warning" {
			return true
		}
	}
	return false
}

// Validate checks the configuration for values the store cannot work with.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.SchemaVersion != CurrentSchemaVersion {
		errs = append(errs, ValidationError{
			Field:   "schema_version",
			Message: fmt.Sprintf("unsupported schema version %q", c.SchemaVersion),
		})
	}
	if c.BootPath == "" {
		errs = append(errs, ValidationError{Field: "boot_path", Message: "must not be empty"})
	}
	if c.StorePath == "" {
		errs = append(errs, ValidationError{Field: "store_path", Message: "must not be empty"})
	}
	errs = append(errs, relativeFile("config_root", c.ConfigRoot)...)
	errs = append(errs, relativeFile("config_write", c.ConfigWrite)...)

	if c.MaxBackups < 0 {
		errs = append(errs, ValidationError{Field: "max_backups", Message: "must not be negative"})
	}
	if c.Board.Memory < 0 {
		errs = append(errs, ValidationError{Field: "board_memory", Message: "must not be negative"})
	}
	if s := c.Board.Serial; s != "" {
		trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
		for _, r := range trimmed {
			if !strings.ContainsRune("0123456789abcdef", r) {
				errs = append(errs, ValidationError{Field: "board_serial", Message: fmt.Sprintf("%q is not hexadecimal", s)})
				break
			}
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "log_level", Message: err.Error(), Severity: "warning"})
	}
	if c.ConfigWrite != "" && !strings.HasPrefix(strings.TrimSpace(c.ConfigTemplate), "#") && c.ConfigTemplate != "" {
		errs = append(errs, ValidationError{
			Field:    "config_template",
			Message:  "template does not start with a comment",
			Severity: "warning",
		})
	}

	return errs
}

func relativeFile(field, path string) ValidationErrors {
	switch {
	case path == "":
		return ValidationErrors{{Field: field, Message: "must not be empty"}}
	case filepath.IsAbs(path):
		return ValidationErrors{{Field: field, Message: "must be relative to boot_path"}}
	case strings.HasPrefix(filepath.Clean(path), ".."):
		return ValidationErrors{{Field: field, Message: "must stay inside boot_path"}}
	}
	return nil
}
