// Package config manages reaper configuration.
//
// It handles:
//   - Global user configuration (YAML under $XDG_CONFIG_HOME/reaper)
//   - Repository-specific configuration (.git/.reaper_config)
//   - Merging both over the built-in defaults
package config
