// Package logx is a small leveled logger the orchestrator uses to report
// non-fatal situations (a sample request before open, a catalog validation
// failure) without turning them into panics. It sits directly on the
// standard library's log.Logger rather than reaching for a structured,
// field-based API, since nothing else in this stack does either.
package logx

import (
	"io"
	"log"
	"os"
)

// Level gates which calls actually reach the underlying writer.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) prefix() string {
	switch l {
	case Debug:
		return "[DEBUG] "
	case Info:
		return "[INFO]  "
	case Warn:
		return "[WARN]  "
	case Error:
		return "[ERROR] "
	default:
		return ""
	}
}

// Logger writes level-gated lines through a standard library log.Logger.
type Logger struct {
	out   *log.Logger
	level Level
}

// New returns a Logger writing to w, suppressing anything below level.
// Tests that want to capture output construct their own Logger rather than
// reaching for the package-level default.
func New(w io.Writer, level Level) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags), level: level}
}

// SetLevel changes which calls reach the writer.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf(level.prefix()+format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(Error, format, args...) }

// Default is the package-level logger used by callers that don't need to
// capture or redirect output.
var Default = New(os.Stderr, Info)

func Debugf(format string, args ...interface{}) { Default.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Default.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Default.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Default.Errorf(format, args...) }
