package logger

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Component returns l scoped to a component name.
func Component(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}

// CronLogger adapts slog to the logger interface of robfig/cron.
type CronLogger struct {
	l *slog.Logger
}

var _ cron.Logger = CronLogger{}

// NewCronLogger wraps l; a nil logger falls back to slog.Default.
func NewCronLogger(l *slog.Logger) CronLogger {
	if l == nil {
		l = slog.Default()
	}
	return CronLogger{l: l}
}

// Info receives the scheduler's wake/run chatter, so it logs at debug level.
func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
