// Package logger is a small leveled logging facade over zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
)

// Init configures level, format ("text" or "json") and output ("stdout",
// "stderr" or a file path).
func Init(level, format, output string) error {
	var w io.Writer
	switch strings.ToLower(output) {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
	}

	if strings.ToLower(format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: w != os.Stdout}
	}

	mu.Lock()
	base = zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	mu.Unlock()
	return nil
}

// SetOutput redirects logs to w with JSON formatting. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	base = base.Output(w)
	mu.Unlock()
}

// SetLevel changes the minimum level (DEBUG, INFO, WARN, ERROR)
func SetLevel(level string) {
	mu.Lock()
	base = base.Level(parseLevel(level))
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// L returns the underlying zerolog logger for structured fields
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

func Debug(format string, v ...any) {
	L().Debug().Msgf(format, v...)
}

func Info(format string, v ...any) {
	L().Info().Msgf(format, v...)
}

func Warn(format string, v ...any) {
	L().Warn().Msgf(format, v...)
}

func Error(format string, v ...any) {
	L().Error().Msgf(format, v...)
}
