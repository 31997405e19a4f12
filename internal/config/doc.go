// Package config defines the settings shared by the bell binaries and provides
// helpers to load, validate and save them in YAML format.
//
// Validate fills defaults for every optional field, so a file naming only the
// data directory is enough to run the whole pipeline.
package config
