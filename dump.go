// FILE: dump.go
package dlog

import (
	"fmt"

	"github.com/petermattis/goid"
)

// DumpRecent synchronously emits the recent ring and a configuration
// summary to the crash-enabled sinks, bypassing the steady-state
// thresholds. It is intended for the faulting thread and is best-effort:
// it proceeds past any sink failure.
//
// The ring is walked without dequeueing, so the entries stay reachable
// for post-mortem tooling after the process aborts.
func (eng *Engine) DumpRecent() {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())

	eng.queueMu.Lock()
	eng.queueMuHolder.Store(goid.Get())
	var batch entryQueue
	batch.swap(&eng.newq)
	eng.queueMuHolder.Store(0)
	eng.queueMu.Unlock()

	eng.flushQueue(&batch, &eng.recent, false)
	eng.writer.flush()

	eng.logMessage("--- begin dump of recent events ---", true)
	eng.flushQueue(&eng.recent, nil, true)

	eng.logMessage("--- logging levels ---", true)
	eng.subs.Each(func(s Subsystem) {
		eng.logMessage(fmt.Sprintf("  %2d/%2d %s", s.LogLevel, s.GatherLevel, s.Name), true)
	})
	eng.logMessage(fmt.Sprintf("  %2d/%2d (syslog threshold)", eng.thresholds.syslogLog, eng.thresholds.syslogCrash), true)
	eng.logMessage(fmt.Sprintf("  %2d/%2d (stderr threshold)", eng.thresholds.stderrLog, eng.thresholds.stderrCrash), true)
	eng.logMessage(fmt.Sprintf("  max_recent %9d", eng.maxRecent), true)
	eng.logMessage(fmt.Sprintf("  max_new    %9d", int(eng.maxNew.Load())), true)
	eng.logMessage(fmt.Sprintf("  log_file %s", eng.logFile), true)
	eng.logMessage("--- end dump of recent events ---", true)

	eng.writer.flush()

	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}
