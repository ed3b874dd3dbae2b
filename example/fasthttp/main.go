package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/asynclog"
	"github.com/lixenwraith/asynclog/compat"
)

func main() {
	logger := asynclog.NewLogger()
	err := logger.ApplyConfigString(
		"directory=/var/log/fasthttp",
		"level=info",
		"workers=2",
		"rotate_mode=time",
		"rotate_interval_s=86400",
		"retention_days=14",
	)
	if err != nil {
		panic(err)
	}
	if err := logger.Start(); err != nil {
		panic(err)
	}
	defer logger.Shutdown(5 * time.Second)

	// Request logs go through zerolog, server logs through the fasthttp adapter;
	// both share one queue and one rotating file set
	access := compat.NewZerolog(logger).With().Str("component", "access").Logger()

	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(asynclog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			ctx.SetContentType("text/plain")
			fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
			access.Info().
				Bytes("path", ctx.Path()).
				Int("status", ctx.Response.StatusCode()).
				Dur("elapsed", time.Since(start)).
				Msg("request served")
		},
		Logger: fasthttpAdapter,

		Name:         "asynclog-example",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func customLevelDetector(msg string) int64 {
	if strings.Contains(msg, "connection cannot be served") {
		return asynclog.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return asynclog.LevelError
	}
	return compat.DetectLogLevel(msg)
}
