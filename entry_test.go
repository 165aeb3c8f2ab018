// FILE: entry_test.go
package dlog

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntry(t *testing.T) {
	eng := New(NewSubsystemMap())
	defer eng.Close()

	e := eng.CreateEntry(5, 2, "hello", 42)
	assert.Equal(t, 5, e.Level())
	assert.Equal(t, 2, e.Subsys())
	assert.NotZero(t, e.Thread())
	assert.False(t, e.Stamp().IsZero())
	assert.Equal(t, "hello 42", string(e.Payload()))
	assert.Equal(t, 8, e.Size())
}

func TestEntryFinishSealsPayload(t *testing.T) {
	eng := New(NewSubsystemMap())
	defer eng.Close()

	e := eng.CreateEntry(5, 0, "fixed")
	e.Finish()
	size := e.Size()

	e.Append("more")
	e.Appendf(" and %d", 7)
	assert.Equal(t, size, e.Size(), "payload must be immutable after Finish")

	// Finish is idempotent
	e.Finish()
	assert.Equal(t, size, e.Size())
}

func TestCreateEntrySizedHint(t *testing.T) {
	eng := New(NewSubsystemMap())
	defer eng.Close()

	var hint atomic.Int64
	hint.Store(64)

	e := eng.CreateEntrySized(5, 0, &hint)
	assert.GreaterOrEqual(t, cap(e.Payload()), 64, "storage should be pre-sized from the hint")

	e.Appendf("exactly %s", "this")
	e.Finish()
	assert.Equal(t, int64(e.Size()), hint.Load(), "Finish must write the actual size back")

	// Next allocation tracks the updated hint
	e2 := eng.CreateEntrySized(5, 0, &hint)
	assert.GreaterOrEqual(t, cap(e2.Payload()), e.Size())
}

func TestAppendValueConversions(t *testing.T) {
	tests := []struct {
		name string
		arg  any
		want string
	}{
		{"string", "text", "text"},
		{"bytes", []byte("raw"), "raw"},
		{"int", -3, "-3"},
		{"uint64", uint64(9), "9"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"nil", nil, "nil"},
		{"error", errors.New("broken"), "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendValue(nil, tt.arg)))
		})
	}
}

func TestAppendValueStructFallback(t *testing.T) {
	type peer struct {
		Addr string
		Port int
	}
	out := string(appendValue(nil, peer{Addr: "10.0.0.1", Port: 6789}))
	require.Contains(t, out, "Addr")
	require.Contains(t, out, "10.0.0.1")
	require.Contains(t, out, "6789")
}
