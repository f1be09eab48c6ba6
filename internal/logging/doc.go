// Package logging builds the process-wide slog logger and defines the
// standardized field names and context helpers used across pipeline stages.
package logging
