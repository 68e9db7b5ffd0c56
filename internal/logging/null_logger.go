package logging

import "github.com/vvka-141/pulseload/pkg/pulse"

// NullLogger is a no-op logger that discards all log messages.
// Safe for concurrent use by multiple goroutines.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}
func (l *NullLogger) Info(format string, args ...interface{})    {}
func (l *NullLogger) Warn(format string, args ...interface{})    {}
func (l *NullLogger) Error(format string, args ...interface{})   {}

var _ pulse.Logger = (*NullLogger)(nil)
