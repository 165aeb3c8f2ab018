// FILE: benchmark_test.go
package dlog

import (
	"path/filepath"
	"sync/atomic"
	"testing"
)

func newBenchEngine(b *testing.B) *Engine {
	b.Helper()
	subs := NewSubsystemMap()
	subs.Add(0, "bench", 5, 5)

	eng := New(subs)
	eng.SetLogFile(filepath.Join(b.TempDir(), "bench.log"))
	eng.SetStderrLevel(-1, -1)
	eng.ReopenLogFile()
	eng.SetMaxNew(100000)
	return eng
}

func BenchmarkSubmitFlush(b *testing.B) {
	eng := newBenchEngine(b)
	defer eng.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Submit(eng.CreateEntry(3, 0, "benchmark payload line"))
		if i%1000 == 0 {
			eng.Flush()
		}
	}
	eng.Flush()
}

func BenchmarkSubmitParallel(b *testing.B) {
	eng := newBenchEngine(b)
	defer func() {
		eng.Stop()
		eng.Close()
	}()
	eng.Start()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			eng.Submit(eng.CreateEntry(3, 0, "parallel payload line"))
		}
	})
}

func BenchmarkCreateEntrySized(b *testing.B) {
	eng := newBenchEngine(b)
	defer eng.Close()

	var hint atomic.Int64
	hint.Store(64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := eng.CreateEntrySized(3, 0, &hint)
		e.Appendf("sized payload %d", i)
		e.Finish()
	}
}
