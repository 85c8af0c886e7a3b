package application

import "log/slog"

// ResolveLogger lets use cases and workers accept an optional logger.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
