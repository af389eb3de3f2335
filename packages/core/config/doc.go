// Package config handles configuration loading and management for
// contractcheck.
//
// It provides functionality for:
//   - Loading configuration from .contractcheck.json or contractcheck.yaml files
//   - Default configuration values
//   - Merging file values with command line overrides
package config
