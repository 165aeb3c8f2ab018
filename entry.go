// FILE: entry.go
package dlog

import (
	"bytes"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Entry is a single log event. It is built by a producer, sealed with
// Finish, and handed to the engine with Submit. After Finish the payload
// and Size are immutable.
type Entry struct {
	stamp   time.Time
	thread  int64
	level   int
	subsys  int
	payload []byte

	// hint, when set, receives the final payload size on Finish so the
	// next sized allocation at the same call site tracks the observed
	// distribution. Relaxed semantics are enough, the only effect of a
	// stale value is allocation size.
	hint *atomic.Int64

	final bool
	next  *Entry
}

// Level returns the entry's priority. Lower values are more severe.
func (e *Entry) Level() int { return e.level }

// Subsys returns the id of the subsystem that produced the entry.
func (e *Entry) Subsys() int { return e.subsys }

// Stamp returns the entry's creation timestamp.
func (e *Entry) Stamp() time.Time { return e.stamp }

// Thread returns the opaque id of the producing goroutine.
func (e *Entry) Thread() int64 { return e.thread }

// Size returns the payload length in bytes.
func (e *Entry) Size() int { return len(e.payload) }

// Payload returns the rendered payload bytes. Callers must not modify
// the returned slice after Finish.
func (e *Entry) Payload() []byte { return e.payload }

// Append renders args into the payload, space-separated.
func (e *Entry) Append(args ...any) *Entry {
	if e.final {
		return e
	}
	for i, arg := range args {
		if i > 0 || len(e.payload) > 0 {
			e.payload = append(e.payload, ' ')
		}
		e.payload = appendValue(e.payload, arg)
	}
	return e
}

// Appendf renders a printf-style message into the payload.
func (e *Entry) Appendf(format string, args ...any) *Entry {
	if e.final {
		return e
	}
	e.payload = fmt.Appendf(e.payload, format, args...)
	return e
}

// Finish seals the entry. If the entry was created with a size hint the
// hint is updated with the actual payload size. Finish is idempotent.
func (e *Entry) Finish() {
	if e.final {
		return
	}
	e.final = true
	if e.hint != nil {
		e.hint.Store(int64(len(e.payload)))
	}
}

// render copies the payload into buf.
func (e *Entry) render(buf []byte) []byte {
	return append(buf, e.payload...)
}

// appendValue converts a value to its log text representation.
// Types without an explicit case are delegated to spew, which renders
// structure and type information in a compact single-space indent.
func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case []byte:
		return append(buf, val...)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Duration:
		return append(buf, val.String()...)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	default:
		var b bytes.Buffer
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		dumper.Fdump(&b, val)
		return append(buf, bytes.TrimSpace(b.Bytes())...)
	}
}
