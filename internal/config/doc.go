// Package config loads, normalizes, and validates reeltime configuration.
//
// It supplies the default scene policy, caption tuning and audio levels, reads
// TOML files, expands user paths (including tilde shortcuts), and honours
// environment fallbacks such as REELTIME_LOG_LEVEL. Every timing constant the
// engine needs lives here so render requests never read magic numbers from
// call sites.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
