// Package log provides structured logging for evencheck.
// Lines carry a timestamp, level and category followed by key=value fields.
// Logging stays off until Init is called (via --debug or EVENCHECK_DEBUG).
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/evencheck/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatLedger   Category = "ledger"   // mark/clear operations
	CatRegistry Category = "registry" // individual registration
	CatStore    Category = "store"    // persistence adapters
	CatConfig   Category = "config"   // configuration loading/saving
	CatWatcher  Category = "watcher"  // data file watcher events
	CatCache    Category = "cache"    // report cache
	CatReport   Category = "report"   // report generation
	CatCLI      Category = "cli"      // command dispatch
	CatMetrics  Category = "metrics"  // metric export
	CatSched    Category = "sched"    // scheduled jobs
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	defaultLogger *Logger
	initMu        sync.Mutex
)

// Init opens path for appending and installs it as the global logger.
// Returns a cleanup function that closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is the user-chosen debug log
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(&Logger{
		file:     f,
		writer:   f,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	})
	return func() { _ = f.Close() }, nil
}

// InitWriter installs a logger writing to w. Used by tests and the watch command.
func InitWriter(w io.Writer) {
	install(&Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	})
}

func install(l *Logger) {
	initMu.Lock()
	defer initMu.Unlock()
	if defaultLogger != nil && defaultLogger.broker != nil {
		defaultLogger.broker.Close()
	}
	defaultLogger = l
}

// Reset removes the global logger. Subsequent calls are no-ops.
func Reset() {
	initMu.Lock()
	defer initMu.Unlock()
	if defaultLogger != nil && defaultLogger.broker != nil {
		defaultLogger.broker.Close()
	}
	defaultLogger = nil
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Subscribe streams formatted log lines until ctx is cancelled.
// Returns a closed channel when no logger is installed.
func Subscribe(ctx context.Context) <-chan pubsub.Event[string] {
	l := current()
	if l == nil || l.broker == nil {
		ch := make(chan pubsub.Event[string])
		close(ch)
		return ch
	}
	return l.broker.Subscribe(ctx)
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func current() *Logger {
	initMu.Lock()
	defer initMu.Unlock()
	return defaultLogger
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	// Format: 2025-12-06T10:45:00 [WARN] [store] message key=value key2=value2
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteString("\n")
	entry := b.String()

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	if l.broker != nil {
		l.broker.Publish(pubsub.CreatedEvent, entry)
	}
}
