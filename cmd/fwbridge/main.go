package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/robotalks/uartfw/pkg/env"
	"github.com/robotalks/uartfw/pkg/firmware"
	fx "github.com/robotalks/uartfw/pkg/framework"
	"github.com/robotalks/uartfw/pkg/host"
	"github.com/robotalks/uartfw/pkg/telemetry/mqtt"
)

func init() {
	env.SetupFlags()
	firmware.SetupGrammarFlag()
}

func main() {
	flag.Parse()

	conf := env.NewConfig()
	line := conf.MustOpenLine()
	link, err := host.NewLink(line, firmware.Default().Grammar)
	if err != nil {
		log.Fatalln(err)
	}
	bridge := mqtt.NewBridge(nil, link, conf.ID())
	bridge.Line = conf.Port
	if bridge.Queue, err = conf.NewQueue(bridge.SetWill); err != nil {
		log.Fatalln(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = fx.NewRunnerWith(ctx).
		HandleSignals().
		GoFunc("line", func(ctx context.Context) error {
			defer cancel()
			return fx.RunWithContextCloser(ctx, line, func() error {
				return link.Run(ctx)
			})
		}).
		Go(bridge).
		Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
