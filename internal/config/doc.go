// Package config loads, normalizes, and validates tvcatalog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY. The Config type centralizes every knob the build pipeline,
// the addon server, and the CLI need, so provider endpoints, rate limits,
// filter policy, and output directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
