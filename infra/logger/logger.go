package logger

import corelogger "github.com/kilianp07/powerfleet/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.Nop

// New returns a Logger tagged with the given component name. Output format is
// driven by APP_ENV and verbosity by LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
