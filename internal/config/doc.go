// Package config loads, normalizes, and validates the TOML configuration
// shared by the vidlift CLI and daemon.
package config
