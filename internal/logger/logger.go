// Package logger provides process-wide logging for wikichat.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the ingestion and chat
// pipelines. Errors are always printed. When a log file is set, INFO and
// above are also written there as rotated JSON.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	rotator *lumberjack.Logger
	zl      = build()
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	zl = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for console logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	zl = build()
}

// SetFile additionally writes INFO and above to a rotated JSON log file.
// An empty path stops file logging.
func SetFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	if rotator != nil {
		rotator.Close() //nolint:errcheck
		rotator = nil
	}
	if path != "" {
		rotator = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
	}
	zl = build()
}

// Zap returns the underlying structured logger.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return zl
}

// Sync flushes buffered log entries.
func Sync() error {
	return Zap().Sync()
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(zapcore.DebugLevel, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(zapcore.InfoLevel, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(zapcore.WarnLevel, format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write(zapcore.ErrorLevel, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func write(level zapcore.Level, format string, args ...any) {
	mu.RLock()
	l := zl
	mu.RUnlock()

	if ce := l.Check(level, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// build assembles the zap logger from the current settings (caller must hold lock).
func build() *zap.Logger {
	consoleLevel := zapcore.ErrorLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			LevelKey:         "level",
			MessageKey:       "msg",
			EncodeLevel:      bracketLevelEncoder,
			ConsoleSeparator: " ",
			LineEnding:       zapcore.DefaultLineEnding,
		}),
		zapcore.Lock(zapcore.AddSync(output)),
		consoleLevel,
	)

	if rotator == nil {
		return zap.New(consoleCore)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zapcore.InfoLevel,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore))
}

// bracketLevelEncoder renders levels as "[DEBUG]", "[INFO]", and so on.
func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}
