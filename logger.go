package bootseq

import (
	"log"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for custom logging implementations for bootseq.
type Logger interface {
	// Info logs an informational message
	Info(str string)
	// Error logs an error message
	Error(str string)
}

// StdLogger is a logger that adapts Logger to a *log.Logger from the standard library.
type StdLogger struct {
	l *log.Logger
}

var _ Logger = &StdLogger{}

// NewStdLogger creates a new Logger that wraps the standard library's log.Logger.
func NewStdLogger(logger *log.Logger) Logger {
	return &StdLogger{
		l: logger,
	}
}

func (l *StdLogger) Info(str string) {
	l.l.Printf("info: %s", str)
}

func (l *StdLogger) Error(str string) {
	l.l.Printf("error: %s", str)
}

// LogrusLogger adapts Logger to a logrus entry, so every message carries the entry's fields.
type LogrusLogger struct {
	entry logrus.FieldLogger
}

var _ Logger = &LogrusLogger{}

// NewLogrusLogger creates a Logger writing to the given logrus logger or entry.
//
// Example:
//
//	logger := bootseq.NewLogrusLogger(logrus.WithField("app", "api"))
//	seq := bootseq.New("api", bootseq.WithLogger(logger))
func NewLogrusLogger(logger logrus.FieldLogger) Logger {
	return &LogrusLogger{
		entry: logger,
	}
}

// withFields returns a copy of the logger with additional fields. Loggers that are not LogrusLogger
// are returned as-is.
func withFields(l Logger, fields logrus.Fields) Logger {
	if ll, ok := l.(*LogrusLogger); ok {
		return &LogrusLogger{entry: ll.entry.WithFields(fields)}
	}
	return l
}

func (l *LogrusLogger) Info(str string) {
	l.entry.Info(str)
}

func (l *LogrusLogger) Error(str string) {
	l.entry.Error(str)
}

// NoopLogger is a logger that discards all output.
type NoopLogger struct{}

var _ Logger = &NoopLogger{}

// NewNoopLogger creates a new NoopLogger. This logger discards all output.
func NewNoopLogger() Logger {
	return &NoopLogger{}
}

func (*NoopLogger) Info(_ string)  {}
func (*NoopLogger) Error(_ string) {}
