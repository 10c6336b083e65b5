// Package config loads, normalizes, and validates takeslice configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as TAKESLICE_FFMPEG. The
// Config type centralizes every knob the CLI and pipeline need so project,
// session, video, and output directories are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
