// FILE: cmd/simple/main.go
package main

import (
	"fmt"

	"github.com/lixenwraith/dlog"
)

const (
	subGeneric = 0
	subNet     = 1
)

func main() {
	subs := dlog.NewSubsystemMap()
	subs.Add(subGeneric, "generic", dlog.LevelInfo, dlog.LevelInfo)
	subs.Add(subNet, "net", dlog.LevelDebug, dlog.LevelDebug)

	cfg, err := dlog.NewBuilder().
		LogFile("./simple.log").
		StderrLevel(dlog.LevelError, dlog.LevelDebug).
		FlushOnExit(true).
		Build()
	if err != nil {
		fmt.Println(err)
		dlog.Exit(1)
	}

	eng := dlog.New(subs)
	if err := eng.ApplyConfig(cfg); err != nil {
		fmt.Println(err)
		dlog.Exit(1)
	}

	eng.Start()

	eng.Submit(eng.CreateEntry(dlog.LevelInfo, subGeneric, "engine started"))
	eng.Submit(eng.CreateEntry(dlog.LevelDebug, subNet, "listening on", ":8080"))
	eng.Submit(eng.CreateEntry(dlog.LevelError, subNet, "connection reset by peer"))

	eng.Stop()
	eng.Close()
}
