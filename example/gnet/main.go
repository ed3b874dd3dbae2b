package main

import (
	"time"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/asynclog"
	"github.com/lixenwraith/asynclog/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	// gnet logs from every event loop; several workers drain them
	logger, err := asynclog.NewBuilder().
		Directory("/var/log/gnet").
		LevelString("debug").
		Format("json").
		Workers(4).
		IdleMode("spin").
		FlushLevel("buffered").
		Build()
	if err != nil {
		panic(err)
	}
	if err := logger.Start(); err != nil {
		panic(err)
	}
	defer logger.Shutdown(5 * time.Second)

	gnetAdapter := compat.NewGnetAdapter(logger, compat.WithFieldExtraction(true))

	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
