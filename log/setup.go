package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variables read by Setup.
const (
	EnvLevel  = "DSD_GHIDRA_LOG"
	EnvFormat = "DSD_GHIDRA_LOG_FORMAT"
)

// levelOff is above every level slog defines.
const levelOff = slog.Level(100)

// ParseLevel maps a level name to a slog.Level. "off" disables logging.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "off", "none":
		return levelOff, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup builds a logger for w from the environment and installs it as the
// slog default. An unknown level name falls back to info and is reported
// once through the new logger.
func Setup(w io.Writer) *slog.Logger {
	level, ok := ParseLevel(os.Getenv(EnvLevel))
	logger := slog.New(NewHandler(w,
		WithLevel(level),
		WithSource(level <= slog.LevelDebug),
		WithJSON(strings.EqualFold(os.Getenv(EnvFormat), "json")),
	))
	slog.SetDefault(logger)
	if !ok {
		logger.Warn("unknown log level, using info", slog.String(EnvLevel, os.Getenv(EnvLevel)))
	}
	return logger
}
