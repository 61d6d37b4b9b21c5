package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/uartfw/pkg/env"
	"github.com/robotalks/uartfw/pkg/firmware"
	fx "github.com/robotalks/uartfw/pkg/framework"
	"github.com/robotalks/uartfw/pkg/uart"
)

var listenAddr string

func init() {
	env.SetupFlags()
	firmware.SetupFlags()
	flag.StringVar(&listenAddr, "listen", listenAddr, "Serve the line over websocket at /line on this address instead of a serial port, e.g. :8080")
}

func serveWebsocket(ctx context.Context, conf *firmware.Config) error {
	mux := http.NewServeMux()
	mux.Handle("/line", uart.WebsocketHandler(func(line io.ReadWriteCloser) {
		if err := conf.Serve(ctx, line); err != nil && err != context.Canceled {
			glog.Infof("line closed: %v", err)
		}
	}))
	server := &http.Server{Addr: listenAddr, Handler: mux}
	glog.Infof("serving %s firmware at ws://%s/line", conf.Grammar, listenAddr)
	return fx.RunWithContextCancel(ctx, func() { server.Close() }, server.ListenAndServe)
}

func main() {
	flag.Parse()

	conf := firmware.NewConfig()
	runner := fx.NewRunner().HandleSignals()
	if listenAddr != "" {
		runner.GoFunc("websocket", func(ctx context.Context) error {
			return serveWebsocket(ctx, conf)
		})
	} else {
		line := env.NewConfig().MustOpenLine()
		runner.GoFunc("serial", func(ctx context.Context) error {
			return conf.Serve(ctx, line)
		})
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
