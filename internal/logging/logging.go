// Package logging builds the diagnostic logger. Diagnostics always go to
// stderr so they never interleave with prettified output on stdout.
package logging

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where diagnostics are written and at which level.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger writing human-readable lines to w. When opts.File
// is set, JSON entries are also written to a rotated file.
func New(w io.Writer, opts Options) *zap.Logger {
	level := ParseLevel(opts.Level)

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(w), level),
	}

	if opts.File != "" {
		fileSyncer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		})
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, fileSyncer, level))
	}

	return zap.New(zapcore.NewTee(cores...))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to a zap
// level. Unknown strings default to warn.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
