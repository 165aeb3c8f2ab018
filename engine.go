// FILE: engine.go
package dlog

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"golang.org/x/sys/unix"
)

// Default queue bounds.
const (
	DefaultMaxNew    = 100
	DefaultMaxRecent = 10000
)

// Conventional entry levels. Lower is more severe; a sink or subsystem
// threshold of N emits every entry with level <= N.
const (
	LevelCritical = 0
	LevelError    = 1
	LevelWarn     = 5
	LevelInfo     = 10
	LevelDebug    = 20
)

// Engine is the asynchronous multi-sink logging core. Producers submit
// finalized entries with minimal latency; a single consumer goroutine
// formats them and performs all sink I/O. A bounded ring of recent
// entries is retained so DumpRecent can emit a high-resolution trace at
// crash time regardless of the steady-state thresholds.
//
// Lock order when both are held: flushMu before queueMu.
type Engine struct {
	subs  Subsystems
	clock Clock

	// queueMu protects newq, the stop flag and the wait predicates of
	// both condition variables.
	queueMu       sync.Mutex
	condFlusher   *sync.Cond // consumer waits, producers signal
	condLoggers   *sync.Cond // producers wait, flush broadcasts
	queueMuHolder atomic.Int64
	newq          entryQueue
	stopping      bool

	// flushMu serializes all flushing activity and protects the recent
	// ring, the writer, the thresholds and the sinks.
	flushMu       sync.Mutex
	flushMuHolder atomic.Int64
	recent        entryQueue
	writer        bufferedWriter
	lineBuf       []byte
	logFile       string
	uid, gid      int
	stderrPrefix  string
	thresholds    sinkThresholds
	maxRecent     int
	graylog       *Graylog
	graylogHost   string
	graylogPort   int
	syslogw       syslogWriter

	// maxNew is read by producers without the queue mutex. Transient
	// bound violations self-correct at the next drain.
	maxNew     atomic.Int64
	injectSegv atomic.Bool

	started bool
	done    chan struct{}

	indirect *atomic.Pointer[Engine] // at-exit handle, leaked once registered
}

// New creates an engine over the given subsystem table. The consumer is
// not started and no file is open.
func New(subs Subsystems) *Engine {
	eng := &Engine{
		subs:   subs,
		writer: newBufferedWriter(),
		thresholds: sinkThresholds{
			syslogLog:    -2,
			syslogCrash:  -2,
			stderrLog:    1,
			stderrCrash:  -1,
			graylogLog:   -3,
			graylogCrash: -3,
		},
		maxRecent: DefaultMaxRecent,
	}
	eng.condFlusher = sync.NewCond(&eng.queueMu)
	eng.condLoggers = sync.NewCond(&eng.queueMu)
	eng.maxNew.Store(DefaultMaxNew)
	return eng
}

// CreateEntry constructs an entry stamped with the engine clock and the
// calling goroutine's id, with args rendered into the payload.
func (eng *Engine) CreateEntry(level, sub int, args ...any) *Entry {
	e := &Entry{
		stamp:  eng.clock.Now(),
		thread: goid.Get(),
		level:  level,
		subsys: sub,
	}
	e.Append(args...)
	return e
}

// CreateEntrySized constructs an empty entry whose payload storage is
// pre-sized from the shared hint. The hint is read racily, Finish
// writes the observed size back.
func (eng *Engine) CreateEntrySized(level, sub int, hint *atomic.Int64) *Entry {
	size := hint.Load()
	if size < 0 {
		size = 0
	}
	return &Entry{
		stamp:   eng.clock.Now(),
		thread:  goid.Get(),
		level:   level,
		subsys:  sub,
		payload: make([]byte, 0, size),
		hint:    hint,
	}
}

// Submit finalizes e and hands ownership to the engine. The call blocks
// while the new queue is over the max_new bound; blocking is the
// backpressure policy, entries are never dropped.
func (eng *Engine) Submit(e *Entry) {
	e.Finish()

	eng.queueMu.Lock()
	eng.queueMuHolder.Store(goid.Get())

	if eng.injectSegv.Load() {
		var p *int
		_ = *p // deterministic fault injection
	}

	// wait for flush to catch up
	for eng.newq.len() > int(eng.maxNew.Load()) {
		eng.condLoggers.Wait()
	}

	eng.newq.enqueue(e)
	eng.condFlusher.Signal()
	eng.queueMuHolder.Store(0)
	eng.queueMu.Unlock()
}

// Start spawns the consumer goroutine. Starting a started engine is a
// programming error.
func (eng *Engine) Start() {
	if eng.started {
		panic("dlog: engine already started")
	}
	eng.queueMu.Lock()
	eng.stopping = false
	eng.queueMu.Unlock()

	eng.done = make(chan struct{})
	eng.started = true
	go func() {
		eng.run()
		close(eng.done)
	}()
}

// Stop sets the stop flag, wakes the consumer and any blocked
// producers, and joins the consumer. The consumer performs one final
// flush on the way out. Stop of a never-started engine is a no-op.
func (eng *Engine) Stop() {
	if !eng.started {
		return
	}
	eng.queueMu.Lock()
	eng.stopping = true
	eng.condFlusher.Signal()
	eng.condLoggers.Broadcast()
	eng.queueMu.Unlock()
	<-eng.done
	eng.started = false
}

// run is the consumer loop: drain whenever the new queue is non-empty,
// otherwise sleep on the flusher condvar.
func (eng *Engine) run() {
	eng.queueMu.Lock()
	eng.queueMuHolder.Store(goid.Get())
	for !eng.stopping {
		if !eng.newq.empty() {
			eng.queueMuHolder.Store(0)
			eng.queueMu.Unlock()
			eng.Flush()
			eng.queueMu.Lock()
			eng.queueMuHolder.Store(goid.Get())
			continue
		}
		eng.condFlusher.Wait()
	}
	eng.queueMuHolder.Store(0)
	eng.queueMu.Unlock()
	eng.Flush()
}

// Close releases the engine's resources. Closing a started engine is a
// programming error. The at-exit handle, if registered, is nulled so
// the at-exit callback becomes a no-op; the handle itself stays
// registered, the at-exit facility cannot unregister.
func (eng *Engine) Close() {
	if eng.started {
		panic("dlog: close of started engine")
	}
	if eng.indirect != nil {
		eng.indirect.Store(nil)
	}
	eng.writer.close()
}

// SetLogFile sets the file sink path. Takes effect at the next
// ReopenLogFile. The empty string runs with no file sink.
func (eng *Engine) SetLogFile(path string) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.logFile = path
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// SetLogStderrPrefix sets the prefix prepended to every stderr line.
func (eng *Engine) SetLogStderrPrefix(prefix string) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.stderrPrefix = prefix
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// ReopenLogFile closes the current fd if any and opens the configured
// path append-only. Open failures are reported to stderr and leave the
// engine with no file sink; chown failures are reported to stderr and
// the opened file stays in use.
func (eng *Engine) ReopenLogFile() {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.writer.close()
	eng.writer.path = eng.logFile
	if eng.logFile != "" {
		fd, err := unix.Open(eng.logFile, unix.O_CREAT|unix.O_WRONLY|unix.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dlog: failed to open %s: %v\n", eng.logFile, err)
			fd = -1
		} else if eng.uid != 0 || eng.gid != 0 {
			if cerr := unix.Fchown(fd, eng.uid, eng.gid); cerr != nil {
				fmt.Fprintf(os.Stderr, "dlog: failed to chown %s: %v\n", eng.logFile, cerr)
			}
		}
		eng.writer.fd = fd
	}
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// ChownLogFile changes ownership of the open log fd and records the
// ids for subsequent reopens.
func (eng *Engine) ChownLogFile(uid, gid int) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.uid = uid
	eng.gid = gid
	if eng.writer.fd >= 0 {
		if err := unix.Fchown(eng.writer.fd, uid, gid); err != nil {
			fmt.Fprintf(os.Stderr, "dlog: failed to chown %s: %v\n", eng.logFile, err)
		}
	}
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// SetMaxNew updates the producer backpressure bound. Written without a
// lock; producers read it racily.
func (eng *Engine) SetMaxNew(n int) {
	eng.maxNew.Store(int64(n))
}

// SetMaxRecent updates the recent ring bound.
func (eng *Engine) SetMaxRecent(n int) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.maxRecent = n
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// SetSyslogLevel updates the syslog (log, crash) threshold pair.
func (eng *Engine) SetSyslogLevel(log, crash int) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.thresholds.syslogLog = log
	eng.thresholds.syslogCrash = crash
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// SetStderrLevel updates the stderr (log, crash) threshold pair.
func (eng *Engine) SetStderrLevel(log, crash int) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.thresholds.stderrLog = log
	eng.thresholds.stderrCrash = crash
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// SetGraylogLevel updates the graylog (log, crash) threshold pair.
func (eng *Engine) SetGraylogLevel(log, crash int) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.thresholds.graylogLog = log
	eng.thresholds.graylogCrash = crash
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// SetGraylogEndpoint records the remote destination used by the next
// StartGraylog.
func (eng *Engine) SetGraylogEndpoint(host string, port int) {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.graylogHost = host
	eng.graylogPort = port
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// StartGraylog creates the shared structured sink client if not
// already running.
func (eng *Engine) StartGraylog() {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	if eng.graylog == nil {
		g := NewGraylog(eng.subs, "dlog")
		if eng.graylogHost != "" {
			if err := g.SetDestination(eng.graylogHost, eng.graylogPort); err != nil {
				fmt.Fprintf(os.Stderr, "dlog: graylog destination: %v\n", err)
			}
		}
		eng.graylog = g
	}
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// StopGraylog releases the engine's reference to the structured sink.
func (eng *Engine) StopGraylog() {
	eng.flushMu.Lock()
	eng.flushMuHolder.Store(goid.Get())
	eng.graylog = nil
	eng.flushMuHolder.Store(0)
	eng.flushMu.Unlock()
}

// SetCoarseTimestamps switches the clock granularity.
func (eng *Engine) SetCoarseTimestamps(coarse bool) {
	if coarse {
		eng.clock.Coarsen()
	} else {
		eng.clock.Refine()
	}
}

// IsInsideLogLock reports whether the calling goroutine currently
// holds one of the engine's mutexes. Crash handlers use this to detect
// reentrancy and pick a non-reentrant dump path.
func (eng *Engine) IsInsideLogLock() bool {
	id := goid.Get()
	return id == eng.queueMuHolder.Load() || id == eng.flushMuHolder.Load()
}

// InjectSegv arms a deterministic nil dereference on the next Submit.
// Test-only.
func (eng *Engine) InjectSegv() {
	eng.injectSegv.Store(true)
}

// ResetSegv disarms fault injection.
func (eng *Engine) ResetSegv() {
	eng.injectSegv.Store(false)
}
