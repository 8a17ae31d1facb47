package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	logger *slog.Logger
	level  = new(slog.LevelVar)
)

func init() {
	// Default to INFO level
	InitLogger("info")
}

// InitLogger initializes the global text logger with the specified level
func InitLogger(lvl string) {
	Setup(lvl, "text")
}

// Setup installs the global logger. format is "json" or "text"; anything
// else falls back to text.
func Setup(lvl, format string) {
	logger = New(os.Stderr, lvl, format)
	slog.SetDefault(logger)
}

// New builds a logger writing to w. The level is shared with the global
// logger so SetLevel affects every logger created here.
func New(w io.Writer, lvl, format string) *slog.Logger {
	SetLevel(lvl)
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// SetLevel changes the level of the running loggers without replacing them.
func SetLevel(lvl string) {
	level.Set(ParseLevel(lvl))
}

func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	return logger
}
