// Package config defines the bundling settings used by the CLI and provides
// helpers to load, validate and save them in YAML format.
//
// The Config type holds the cache and output directories, the application
// overlay inputs (package, setup descriptor, README, scripts root) and the
// download timeout. All fields default to the standard project layout, so a
// missing settings file is not an error for callers that fall back to
// Default.
package config
