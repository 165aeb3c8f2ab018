// FILE: cmd/fasthttp/main.go
package main

import (
	"fmt"
	"time"

	"github.com/lixenwraith/dlog"
	"github.com/lixenwraith/dlog/compat"
	"github.com/valyala/fasthttp"
)

const subHTTP = 1

func main() {
	subs := dlog.NewSubsystemMap()
	subs.Add(0, "generic", dlog.LevelInfo, dlog.LevelInfo)
	subs.Add(subHTTP, "http", dlog.LevelDebug, dlog.LevelDebug)

	eng := dlog.New(subs)
	eng.SetLogFile("/var/log/dlog/fasthttp.log")
	eng.ReopenLogFile()
	eng.SetFlushOnExit()
	eng.Start()
	defer func() {
		eng.Stop()
		eng.Close()
	}()

	adapter := compat.NewFastHTTPAdapter(
		eng,
		subHTTP,
		compat.WithDefaultLevel(dlog.LevelInfo),
	)

	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  adapter,

		Name:         "dlog-example",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}
