// Package config defines the engine configuration surface: YAML
// loading, defaults, validation, and AUGUR_* environment overrides.
//
// The loading sequence is:
//
//  1. Start from DefaultConfig
//  2. Unmarshal the YAML file over it (unset keys keep defaults)
//  3. Apply environment variable overrides
//  4. Validate the final configuration
//
// Configuration is consumed at engine construction and not re-read at
// runtime; the rule file watcher is the only component that reloads
// anything after startup.
package config
