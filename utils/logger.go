package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger provides leveled logging throughout the application. Errors go to
// stderr, every other level to stdout.
type Logger struct {
	out *logrus.Logger
	err *logrus.Logger
}

func newLogrus(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// NewLogger creates a new Logger writing to stdout/stderr at info level.
func NewLogger() *Logger {
	return &Logger{
		out: newLogrus(os.Stdout),
		err: newLogrus(os.Stderr),
	}
}

// NewLoggerWithLevel creates a Logger at the named level ("debug", "warn", ...).
// An unknown level falls back to info.
func NewLoggerWithLevel(level string) *Logger {
	l := NewLogger()
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.out.SetLevel(lvl)
		l.err.SetLevel(lvl)
	} else {
		l.Warn("[logger] Unknown log level %q, using info", level)
	}
	return l
}

// SetOutput redirects every level to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
	l.err.SetOutput(w)
}

// SetErrorOutput redirects only the error level to w.
func (l *Logger) SetErrorOutput(w io.Writer) {
	l.err.SetOutput(w)
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.out.Debugf(format, args...)
}
