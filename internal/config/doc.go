// Package config loads, normalizes, and validates slidecast configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and pipeline need: data directories, external tool locations, default
// extraction parameters, and worker limits.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical image formats, and clear validation errors.
package config
