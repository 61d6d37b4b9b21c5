package firmware

import (
	"context"
	"io"

	fx "github.com/robotalks/uartfw/pkg/framework"
	"github.com/robotalks/uartfw/pkg/uart"
)

// Serve runs a fresh firmware on line until ctx is done or the line
// fails. line is closed on return.
func (c *Config) Serve(ctx context.Context, line io.ReadWriteCloser) error {
	stream := uart.NewStream(line)
	fw, err := c.NewFirmware(stream)
	if err != nil {
		line.Close()
		return err
	}
	stream.ISR = fw.Driver
	loop := fx.NewLoop().Add(fw)
	return fx.RunWithContextCloser(ctx, line, func() error {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		return fx.NewRunnerWith(runCtx).
			GoFunc("line", func(ctx context.Context) error {
				defer cancel()
				return stream.Run(ctx)
			}).
			Go(loop).
			Wait()
	})
}
