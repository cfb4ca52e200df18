// Package config loads dupefinder settings from TOML.
//
// Values come from Default, are overlaid by the first config file found
// (explicit path, ~/.config/dupefinder/config.toml, ./dupefinder.toml), then
// normalized and validated. Command line flags are applied on top by the CLI.
package config
