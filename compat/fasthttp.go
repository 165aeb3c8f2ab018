// FILE: compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/dlog"
)

// FastHTTPAdapter wraps a dlog.Engine to implement fasthttp's Logger
// interface. Every Printf call becomes one submitted entry on the
// adapter's subsystem.
type FastHTTPAdapter struct {
	engine        *dlog.Engine
	subsys        int
	defaultLevel  int
	levelDetector func(string) int
}

// NewFastHTTPAdapter creates a fasthttp-compatible logger adapter
// producing entries for the given subsystem.
func NewFastHTTPAdapter(engine *dlog.Engine, subsys int, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		engine:        engine,
		subsys:        subsys,
		defaultLevel:  dlog.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the entry level for Printf calls with no
// detectable severity.
func WithDefaultLevel(level int) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect the level from
// message content.
func WithLevelDetector(detector func(string) int) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected >= 0 {
			level = detected
		}
	}

	a.engine.Submit(a.engine.CreateEntry(level, a.subsys, msg))
}

// DetectLogLevel attempts to detect an entry level from message
// content. Returns -1 when nothing matches.
func DetectLogLevel(msg string) int {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return dlog.LevelError
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return dlog.LevelWarn
	}

	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return dlog.LevelDebug
	}

	return -1
}
