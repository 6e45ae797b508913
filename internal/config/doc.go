// Package config loads the logview configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/logview/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # TOML Format
//
// Every field is optional:
//
//	log_path = "~/.local/state/logview/debug.log"  # no diagnostics when unset
//	debug = false                                  # debug-level diagnostics
//	rules_path = "~/.config/logview/rules.toml"
//	tail_lines = 5000                              # 0 reads whole files
//	poll_seconds = 1
//	encoding = "utf-8"                             # WHATWG label
//	palette = "dracula"                            # chroma style name
//	max_buffer_bytes = 8388608                     # 0 is unlimited
//
// Paths starting with ~ are expanded to the home directory and made
// absolute. Encoding and palette names are validated by the packages that
// use them.
//
// # Error Handling
//
// Load returns errors for unreadable or malformed files and for
// out-of-range numbers. A missing file is not an error.
package config
