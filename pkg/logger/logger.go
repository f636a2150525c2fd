// Package logger prints leveled diagnostics to the console and mirrors them
// to a daily log file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level is a log severity.
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
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config value to a Level; unknown values mean info.
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

var (
	mu      sync.Mutex
	level             = LevelInfo
	console io.Writer = os.Stdout
	file    io.WriteCloser

	debugColor = color.New(color.FgHiBlack)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// SetLevel sets the minimum level printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetOutput redirects console output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	console = w
}

// FileName returns the log file name for the given day.
func FileName(t time.Time) string {
	return fmt.Sprintf("cyberusb_%s.log", t.Format("20060102"))
}

// Setup opens today's log file under dir. Call Close on exit.
func Setup(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	file = f
	return path, nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Debugf prints messages only at debug level.
func Debugf(format string, args ...interface{}) {
	logf(LevelDebug, format, args...)
}

// Infof prints messages always (standard output).
func Infof(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// Warnf prints a non-fatal problem.
func Warnf(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// Errorf prints a failure. It never exits.
func Errorf(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}

func logf(l Level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if l < level {
		return
	}
	msg := fmt.Sprintf(format, args...)

	switch l {
	case LevelDebug:
		fmt.Fprintln(console, debugColor.Sprint("[DEBUG]"), msg)
	case LevelWarn:
		fmt.Fprintln(console, warnColor.Sprint("[WARN]"), msg)
	case LevelError:
		fmt.Fprintln(console, errorColor.Sprint("[ERROR]"), msg)
	default:
		fmt.Fprintln(console, msg)
	}

	if file != nil {
		fmt.Fprintf(file, "%s - %s - %s\n", time.Now().Format("2006-01-02 15:04:05,000"), l, msg)
	}
}
