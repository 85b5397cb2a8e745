// Package config loads, normalizes, and validates medialib configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEDIALIB_ENV and DATABASE_URL. The Config type centralizes the store, disk,
// conversion, and logging settings the CLI needs so commands can discover
// them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
