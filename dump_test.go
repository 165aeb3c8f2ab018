// FILE: dump_test.go
package dlog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpRecentFormatting(t *testing.T) {
	eng, path := newTestEngine(t)
	defer eng.Close()

	for i := 1; i <= 3; i++ {
		eng.Submit(eng.CreateEntry(3, subOSD, fmt.Sprintf("e%d", i)))
	}
	eng.Flush()
	require.Equal(t, 3, eng.recent.len())

	eng.DumpRecent()

	lines := readLines(t, path)
	// 3 normal lines, then the dump block.
	require.Greater(t, len(lines), 3, "dump block missing:\n%s", spew.Sdump(lines))

	begin := -1
	for i, ln := range lines {
		if ln == "--- begin dump of recent events ---" {
			begin = i
			break
		}
	}
	require.NotEqual(t, -1, begin, "begin marker not found")

	// Countdown-prefixed re-emission of the ring, oldest first.
	assert.True(t, strings.HasPrefix(lines[begin+1], "     3> "), "got %q", lines[begin+1])
	assert.True(t, strings.HasPrefix(lines[begin+2], "     2> "), "got %q", lines[begin+2])
	assert.True(t, strings.HasPrefix(lines[begin+3], "     1> "), "got %q", lines[begin+3])
	assert.True(t, strings.HasSuffix(lines[begin+1], " e1"))
	assert.True(t, strings.HasSuffix(lines[begin+3], " e3"))

	// Levels table and configuration summary.
	assert.Contains(t, lines, "--- logging levels ---")
	assert.Contains(t, lines, "  10/10 none")
	assert.Contains(t, lines, "   5/ 5 osd")
	assert.Contains(t, lines, "  -2/-2 (syslog threshold)")
	assert.Contains(t, lines, "   1/-1 (stderr threshold)")
	assert.Contains(t, lines, fmt.Sprintf("  max_recent %9d", DefaultMaxRecent))
	assert.Contains(t, lines, fmt.Sprintf("  max_new    %9d", DefaultMaxNew))
	assert.Equal(t, "--- end dump of recent events ---", lines[len(lines)-1])
}

func TestDumpRecentPreservesRing(t *testing.T) {
	eng, _ := newTestEngine(t)
	defer eng.Close()

	for i := 1; i <= 3; i++ {
		eng.Submit(eng.CreateEntry(3, subOSD, fmt.Sprintf("e%d", i)))
	}
	eng.Flush()

	eng.DumpRecent()

	require.Equal(t, 3, eng.recent.len(), "crash iteration must not consume the ring")
	var got []string
	for e := eng.recent.head; e != nil; e = e.next {
		got = append(got, string(e.Payload()))
	}
	assert.Equal(t, []string{"e1", "e2", "e3"}, got)
}

func TestDumpRecentDrainsNewQueueFirst(t *testing.T) {
	eng, path := newTestEngine(t)
	defer eng.Close()

	// Unflushed entries must appear in the dump: the dumper swaps the
	// new queue out and runs a normal flush before the crash pass.
	eng.Submit(eng.CreateEntry(3, subOSD, "pending"))
	eng.DumpRecent()

	assert.Equal(t, 0, eng.newq.len())
	assert.Equal(t, 1, eng.recent.len())

	lines := readLines(t, path)
	found := false
	for _, ln := range lines {
		if strings.HasPrefix(ln, "     1> ") && strings.HasSuffix(ln, " pending") {
			found = true
		}
	}
	assert.True(t, found, "pending entry missing from crash pass:\n%s", strings.Join(lines, "\n"))
}

func TestDumpRecentBypassesSubsystemGate(t *testing.T) {
	eng, path := newTestEngine(t)
	defer eng.Close()

	// Level 9 is above osd's log_level 5: invisible in normal mode,
	// but the crash pass emits it to the file regardless.
	eng.Submit(eng.CreateEntry(9, subOSD, "hidden"))
	eng.Flush()
	require.Empty(t, readLines(t, path))

	eng.DumpRecent()
	lines := readLines(t, path)
	found := false
	for _, ln := range lines {
		if strings.HasSuffix(ln, " hidden") {
			found = true
		}
	}
	assert.True(t, found)
}
