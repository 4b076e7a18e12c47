// Package config loads deetlist settings from a YAML file.
//
// A missing file is not an error: Load returns Default(). Command-line flags
// are applied on top by the cli package.
package config
