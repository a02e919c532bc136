// internal/util/logger.go
package util

import (
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

// InitLogger initializes the global structured logger with the given level
// ("debug", "info", "warn", "error"). It sets up a JSON handler for
// production-like logs.
func InitLogger(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true, // Add file and line number to logs
		Level:     parseLevel(level),
	})
	logger = slog.New(handler)
	slog.SetDefault(logger) // Set as default logger for convenience
}

// GetLogger returns the initialized global logger.
func GetLogger() *slog.Logger {
	if logger == nil {
		InitLogger("info") // Initialize if not already initialized (should be called explicitly at app start)
	}
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
