// Package config loads, normalizes, and validates slidecast's TOML
// configuration. Defaults live in defaults.go and the embedded
// sample_config.toml mirrors every section.
package config
