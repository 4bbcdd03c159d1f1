// Package config loads, normalizes, and validates voxver configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates split ratios, bin edges, and
// thresholds before any dataset computation starts. The Config type
// centralizes every knob the CLI needs: artifact directories, split defaults,
// validator minimums, and temporal-audit settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
