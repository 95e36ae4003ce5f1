// logger/logger.go
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

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// callerSkip points zerolog at the caller of the package-level helpers below.
const callerSkip = 3

type Logger struct {
	zl            zerolog.Logger
	file          *os.File
	consoleOutput io.Writer
	fileOutput    io.Writer
	minLevel      LogLevel
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// ensureInitialized creates a default console logger if Init was never called
func ensureInitialized() {
	mu.RLock()
	ready := defaultLogger != nil
	mu.RUnlock()
	if ready {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = &Logger{
			consoleOutput: os.Stdout,
			minLevel:      DEBUG,
		}
		defaultLogger.setup()
	}
}

// Init initializes the logger with optional file and console output
// If filename is empty, logs only to console
// If console is false, logs only to file
func Init(filename string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	level := DEBUG
	if defaultLogger != nil {
		level = defaultLogger.minLevel
		if defaultLogger.file != nil {
			defaultLogger.file.Close()
		}
	}

	l := &Logger{minLevel: level}

	if filename != "" {
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		l.fileOutput = file
	}

	if console {
		l.consoleOutput = os.Stdout
	}

	if l.fileOutput == nil && l.consoleOutput == nil {
		return fmt.Errorf("no output destination specified")
	}

	l.setup()
	defaultLogger = l
	return nil
}

// SetOutput redirects all log output to w as JSON lines. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level := DEBUG
	if defaultLogger != nil {
		level = defaultLogger.minLevel
	}
	defaultLogger = &Logger{fileOutput: w, minLevel: level}
	defaultLogger.setup()
}

// SetLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR)
// Messages below this level will not be logged
func SetLevel(level LogLevel) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.minLevel = level
	defaultLogger.zl = defaultLogger.zl.Level(level.zerolog())
}

// ParseLevel converts a config string into a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (lv LogLevel) zerolog() zerolog.Level {
	switch lv {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) setup() {
	var writers []io.Writer

	// Colored, human readable output for the console
	if l.consoleOutput != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: l.consoleOutput, TimeFormat: time.DateTime})
	}

	// JSON lines for the file
	if l.fileOutput != nil {
		writers = append(writers, l.fileOutput)
	}

	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(l.minLevel.zerolog()).
		With().
		Timestamp().
		CallerWithSkipFrameCount(callerSkip).
		Logger()
}

// Close closes the log file if one is open
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil && defaultLogger.file != nil {
		defaultLogger.file.Close()
		defaultLogger.file = nil
		defaultLogger.fileOutput = nil
		defaultLogger.setup()
	}
}

func current() *zerolog.Logger {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	zl := defaultLogger.zl
	return &zl
}

// Debug logs a debug message
func Debug(v ...interface{}) {
	current().Debug().Msg(fmt.Sprint(v...))
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...interface{}) {
	current().Debug().Msgf(format, v...)
}

// Info logs an info message
func Info(v ...interface{}) {
	current().Info().Msg(fmt.Sprint(v...))
}

// Infof logs a formatted info message
func Infof(format string, v ...interface{}) {
	current().Info().Msgf(format, v...)
}

// Warn logs a warning message
func Warn(v ...interface{}) {
	current().Warn().Msg(fmt.Sprint(v...))
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...interface{}) {
	current().Warn().Msgf(format, v...)
}

// Error logs an error message
func Error(v ...interface{}) {
	current().Error().Msg(fmt.Sprint(v...))
}

// Errorf logs a formatted error message
func Errorf(format string, v ...interface{}) {
	current().Error().Msgf(format, v...)
}

// Fatal logs an error message and exits the program
func Fatal(v ...interface{}) {
	current().Error().Msg(fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs a formatted error message and exits the program
func Fatalf(format string, v ...interface{}) {
	current().Error().Msgf(format, v...)
	os.Exit(1)
}

// Request logs one served HTTP request with structured fields.
func Request(method, path string, status int, duration time.Duration, requestID string) {
	ev := current().Info()
	if status >= 500 {
		ev = current().Error()
	}
	ev.Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("duration", duration).
		Str("request_id", requestID).
		Msg("request served")
}
