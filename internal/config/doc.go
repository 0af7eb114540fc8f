// Package config loads plume's settings file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/plume/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Files ending in .yaml or .yml are decoded as YAML; anything else is TOML.
//
// # TOML Format
//
//	colorize = true
//	translate_time = "SYS:HH:MM:ss"
//	message_key = "msg"
//	error_like_keys = ["error"]
//	error_props = "code,details"
//	ignore = "hostname"
//	search = "level >= `40`"
//
//	[log]
//	level = "debug"
//	file = "~/.local/state/plume/plume.log"
//
// Every key is optional. Leaving colorize out lets the caller decide from
// the terminal. Tilde expansion is performed for the config path and
// log.file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and decode errors. A missing file is not an error.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return err
//	}
//	formatter, err := prettify.New(cfg.Formatter(colors.Detect(os.Stdout)))
//
// Command-line flags are applied by the caller on top of the loaded Config
// before it is converted, so only flags the user actually set win.
package config
