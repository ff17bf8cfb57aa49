// Package logging configures structured logging for the server and the worker.
//
// Usage:
//
//	logger := logging.Setup()                 // from LOG_LEVEL and LOG_FORMAT
//	logging.SetupWithLevel(slog.LevelDebug)   // explicit level override
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
//	LOG_FORMAT: text (colored, default) or json
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs and returns the default logger at the level specified by LOG_LEVEL.
func Setup() *slog.Logger {
	return SetupWithLevel(levelFromEnv())
}

// SetupWithLevel installs and returns the default logger at the given level.
func SetupWithLevel(level slog.Level) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, os.Getenv("LOG_FORMAT"), level))
	slog.SetDefault(logger)
	return logger
}

// NewHandler returns a JSON handler for format "json" and a colored tint handler otherwise.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: true})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
