// FILE: cmd/gnet/main.go
package main

import (
	"github.com/lixenwraith/dlog"
	"github.com/lixenwraith/dlog/compat"
	"github.com/panjf2000/gnet/v2"
)

const subNet = 1

type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	subs := dlog.NewSubsystemMap()
	subs.Add(0, "generic", dlog.LevelInfo, dlog.LevelInfo)
	subs.Add(subNet, "net", dlog.LevelDebug, dlog.LevelDebug)

	eng := dlog.New(subs)
	eng.SetLogFile("/var/log/dlog/gnet.log")
	eng.ReopenLogFile()
	eng.SetFlushOnExit()
	eng.Start()
	defer func() {
		eng.Stop()
		eng.Close()
	}()

	adapter := compat.NewGnetAdapter(eng, subNet)

	err := gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(adapter),
	)
	if err != nil {
		panic(err)
	}
}
