// Package config loads, normalizes, and validates datefixer configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the DATEFIXER_EXIFTOOL environment override. Command
// line flags are applied on top of the loaded Config by the CLI.
package config
