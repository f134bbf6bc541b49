// Package config defines the flipclock settings and provides helpers to load,
// validate and save them in YAML format.
//
// Load reads the YAML file through cleanenv so every setting can also be
// overridden with a FLIPCLOCK_* environment variable.
package config
