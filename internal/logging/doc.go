// Package logging provides structured logging helpers built on log/slog.
//
// It defines the attribute keys used across mailbridge so log entries are
// queryable with a consistent vocabulary, and utilities for logging
// user-identifying values (entity ids, identity tokens) without exposing
// their content.
package logging
