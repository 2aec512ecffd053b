// Package logging builds the engine's structured slog logger from
// configuration: level, output format (JSON or text), optional source
// locations, and a pluggable writer for tests.
package logging
