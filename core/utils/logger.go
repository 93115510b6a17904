package utils

import (
	"io"
	"log"
	"os"
)

// Logger is a thin wrapper over the standard logger with an error stream.
// Handlers and services treat a nil *Logger as "no logging".
type Logger struct {
	out *log.Logger
	err *log.Logger
}

func NewLogger() *Logger {
	return &Logger{
		out: log.New(os.Stdout, "", log.LstdFlags),
		err: log.New(os.Stderr, "ERROR ", log.LstdFlags),
	}
}

func NewLoggerTo(out, errOut io.Writer) *Logger {
	return &Logger{
		out: log.New(out, "", log.LstdFlags),
		err: log.New(errOut, "ERROR ", log.LstdFlags),
	}
}

func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	l.out.Printf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil || l.err == nil {
		return
	}
	l.err.Printf(format, args...)
}
