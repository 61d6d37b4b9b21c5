package firmware

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartfw/pkg/calc"
)

func TestServe(t *testing.T) {
	device, host := net.Pipe()
	conf := NewConfig()
	conf.Grammar = GrammarCalc
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- conf.Serve(ctx, device)
	}()

	host.SetDeadline(time.Now().Add(time.Second))
	r := bufio.NewReader(host)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, calc.Banner, line)

	_, err = host.Write([]byte(calcPacket("C 6 7 *")))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "p0.st: (t) 42 (b)\n", line)

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	host.Close()
}

func TestServeLineClosed(t *testing.T) {
	device, host := net.Pipe()
	conf := NewConfig()
	conf.Grammar = GrammarMnemonic
	conf.TickInterval = 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- conf.Serve(context.Background(), device)
	}()
	host.Close()
	select {
	case err := <-errCh:
		require.True(t, errors.Is(err, io.EOF), "%v", err)
	case <-time.After(time.Second):
		t.Fatal("serve not stopped")
	}
}

func TestServeUnknownGrammar(t *testing.T) {
	device, host := net.Pipe()
	defer host.Close()
	conf := NewConfig()
	conf.Grammar = "morse"
	require.Error(t, conf.Serve(context.Background(), device))
}
