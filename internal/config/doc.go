// Package config loads the tool's own settings from HCL files.
//
// # Overview
//
// The tool configuration names where the boot partition is mounted, which
// file the firmware reads first, which single file the tool may rewrite,
// where snapshot bundles live, and how edits and backups behave. It is read
// once at startup and handed to the store as an immutable value.
//
// Files are read in order and later files override earlier ones:
//
//	/etc/bootctl.hcl
//	$XDG_CONFIG_HOME/bootctl.hcl (or ~/.config/bootctl.hcl)
//
// # Example
//
//	boot_path     = "/boot"
//	store_path    = "pibootctl"
//	config_root   = "config.txt"
//	config_write  = "syscfg.txt"
//	backup        = true
//	comment_lines = true
//	max_backups   = 10
//	board_model   = env.BOOTCTL_MODEL
//
// Expressions may reference the process environment through the env object.
package config
