// FILE: compat/gnet.go
package compat

import (
	"fmt"

	"github.com/lixenwraith/dlog"
)

// GnetAdapter wraps a dlog.Engine to implement gnet's logging.Logger
// interface.
type GnetAdapter struct {
	engine       *dlog.Engine
	subsys       int
	fatalHandler func(msg string)
}

// NewGnetAdapter creates a gnet-compatible logger adapter producing
// entries for the given subsystem.
func NewGnetAdapter(engine *dlog.Engine, subsys int, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		engine: engine,
		subsys: subsys,
		fatalHandler: func(msg string) {
			dlog.Exit(1) // Flushes through the at-exit facility
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

func (a *GnetAdapter) submit(level int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.engine.Submit(a.engine.CreateEntry(level, a.subsys, msg))
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.submit(dlog.LevelDebug, format, args...)
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.submit(dlog.LevelInfo, format, args...)
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.submit(dlog.LevelWarn, format, args...)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.submit(dlog.LevelError, format, args...)
}

// Fatalf logs at critical level, flushes, and triggers the fatal
// handler.
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.engine.Submit(a.engine.CreateEntry(dlog.LevelCritical, a.subsys, msg))
	a.engine.Flush()

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
