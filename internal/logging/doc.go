// Package logging builds the application slog logger with console and JSON
// handlers plus attribute helpers shared across components.
package logging
