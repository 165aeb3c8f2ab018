// FILE: flush.go
package dlog

import (
	"fmt"
	"os"

	"github.com/petermattis/goid"
)

// Flush synchronously drains the new queue, emits to the sinks, moves
// the drained entries onto the recent ring and trims the ring. Callable
// from any thread; sink errors are coalesced, never surfaced.
func (eng *Engine) Flush() {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())

	eng.queueMu.Lock()
	eng.queueMuHolder.Store(goid.Get())
	var batch entryQueue
	batch.swap(&eng.newq)
	eng.condLoggers.Broadcast()
	eng.queueMuHolder.Store(0)
	eng.queueMu.Unlock()

	eng.flushQueue(&batch, &eng.recent, false)

	// trim
	for eng.recent.len() > eng.maxRecent {
		eng.recent.dequeue()
	}

	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// flushQueue emits every entry of q. With requeue set the entries are
// dequeued and transferred onto it in order; with requeue nil the list
// is walked in place, which is how the crash dump iterates the recent
// ring without consuming it. Caller holds flushMu.
func (eng *Engine) flushQueue(q, requeue *entryQueue, crash bool) {
	countdown := 0
	if crash {
		countdown = q.len()
	}

	e := q.head
	for e != nil {
		next := e.next
		if requeue != nil {
			q.dequeue()
			requeue.enqueue(e)
		}

		decision := routeEntry(
			e.level,
			eng.subs.LogLevel(e.subsys),
			eng.thresholds,
			crash,
			eng.writer.fd >= 0,
			eng.graylog != nil,
		)

		if decision.file || decision.syslog || decision.stderr {
			eng.emitLine(e, decision, countdown, crash)
		}
		if decision.graylog {
			eng.graylog.LogEntry(e)
		}

		countdown--
		e = next
	}

	eng.writer.flush()
}

// emitLine formats one entry into the line scratch and hands it to the
// text sinks. The scratch is sized 80 + payload, enough for the crash
// prefix, the timestamp and the thread/level fields.
func (eng *Engine) emitLine(e *Entry, decision sinkSet, countdown int, crash bool) {
	lineSize := 80 + e.Size()
	if cap(eng.lineBuf) < lineSize {
		eng.lineBuf = make([]byte, 0, lineSize)
	}
	line := eng.lineBuf[:0]

	if crash {
		line = fmt.Appendf(line, "%6d> ", countdown)
	}
	line = eng.clock.AppendTime(e.stamp, line)
	line = fmt.Appendf(line, " %x %2d ", uint64(e.thread), e.level)
	line = e.render(line)

	if decision.syslog {
		eng.syslogw.write(line)
	}
	if decision.stderr {
		fmt.Fprintf(os.Stderr, "%s%s\n", eng.stderrPrefix, line)
	}
	if decision.file {
		line = append(line, '\n')
		eng.writer.append(line)
	}
	eng.lineBuf = line[:0]
}

// logMessage emits a standalone message line outside the entry path:
// unconditionally to an open fd, and to syslog/stderr per the
// mode-appropriate threshold sign.
func (eng *Engine) logMessage(s string, crash bool) {
	if eng.writer.fd >= 0 {
		eng.writer.append(append([]byte(s), '\n'))
	}

	syslogTh := eng.thresholds.syslogLog
	stderrTh := eng.thresholds.stderrLog
	if crash {
		syslogTh = eng.thresholds.syslogCrash
		stderrTh = eng.thresholds.stderrCrash
	}
	if syslogTh >= 0 {
		eng.syslogw.write([]byte(s))
	}
	if stderrTh >= 0 {
		fmt.Fprintln(os.Stderr, s)
	}
}
