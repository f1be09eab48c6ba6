// Package config loads, normalizes, and validates chalktalk's TOML
// configuration, merging environment overrides for secret values.
package config
