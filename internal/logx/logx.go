// Package logx is the structured-logging wrapper the CLI and store packages use, built on zerolog the same way the
// rest of the example pack does (grounded on vocdoni-davinci-node's log package), trimmed to the single global
// logger this module needs.
package logx

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var (
	mu  sync.RWMutex
	log zerolog.Logger
)

func init() {
	Init(LevelInfo)
}

// Init (re)configures the global logger at the given level, writing to stderr in zerolog's console format.
func Init(level string) {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
	logger := zerolog.New(out).With().Timestamp().Logger()

	switch level {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelInfo:
		logger = logger.Level(zerolog.InfoLevel)
	case LevelWarn:
		logger = logger.Level(zerolog.WarnLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("logx: invalid level %q", level))
	}

	mu.Lock()
	log = logger
	mu.Unlock()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a debug-level message with structured key-value fields.
func Debug(msg string, fields map[string]any) {
	current().Debug().Fields(fields).Msg(msg)
}

// Info logs an info-level message with structured key-value fields.
func Info(msg string, fields map[string]any) {
	current().Info().Fields(fields).Msg(msg)
}

// Warn logs a warn-level message with structured key-value fields.
func Warn(msg string, fields map[string]any) {
	current().Warn().Fields(fields).Msg(msg)
}

// Error logs an error-level message, attaching err and any additional structured fields.
func Error(msg string, err error, fields map[string]any) {
	current().Error().Err(err).Fields(fields).Msg(msg)
}
