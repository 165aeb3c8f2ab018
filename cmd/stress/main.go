// FILE: cmd/stress/main.go
package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/dlog"
)

const producers = 8

// Floods the engine from several producers with a tight backpressure
// bound, then dumps the recent ring the way a crash handler would.
func main() {
	subs := dlog.NewSubsystemMap()
	subs.Add(0, "stress", dlog.LevelDebug, dlog.LevelDebug)

	eng := dlog.New(subs)
	eng.SetLogFile("./stress.log")
	eng.ReopenLogFile()
	eng.SetMaxNew(50)
	eng.SetMaxRecent(1000)
	eng.Start()

	start := time.Now()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				eng.Submit(eng.CreateEntry(dlog.LevelDebug, 0, "producer", p, "seq", i))
			}
		}(p)
	}
	wg.Wait()

	eng.Stop()
	fmt.Printf("submitted %d entries in %v\n", producers*10000, time.Since(start))

	eng.DumpRecent()
	eng.Close()
}
