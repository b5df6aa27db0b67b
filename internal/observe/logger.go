// Package observe carries the explicit observability surface threaded into
// the pipeline layers: structured logging, operation metrics and tracing.
// Components receive these as plain values; there is no package-level
// ambient logger.
package observe

// Logger is the minimal structured logging interface accepted by the
// pipeline layers. args are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards all log output. It is the default wherever no logger
// was wired.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

var _ Logger = NopLogger{}
