package uart

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartfw/pkg/fault"
	"github.com/robotalks/uartfw/pkg/ring"
)

func newSimDriver() (*Sim, *Driver, *fault.Register) {
	sim := &Sim{}
	faults := fault.NewRegister(nil)
	return sim, NewDriver(sim, faults), faults
}

func TestReceive(t *testing.T) {
	sim, d, faults := newSimDriver()
	sim.Receive(d, 'a', 'b', 'c')
	var got []byte
	d.Atomic(func() {
		for !d.In.IsEmpty() {
			got = append(got, d.In.Pop())
		}
	})
	require.Equal(t, []byte("abc"), got)
	require.Zero(t, faults.Bits())
}

func TestReceiveOverflow(t *testing.T) {
	sim, d, faults := newSimDriver()
	for i := 0; i <= ring.Capacity; i++ {
		sim.Receive(d, byte(i))
	}
	require.True(t, faults.Bits().Has(fault.Overflow))
	require.Equal(t, "IO buffer overflow!", faults.Message())
}

func TestPumpAndTransmit(t *testing.T) {
	sim, d, faults := newSimDriver()

	// idle line, nothing queued.
	d.Pump()
	require.False(t, sim.TxEnabled())
	require.Empty(t, sim.Sent())

	d.SendString("hello")
	d.Pump()
	require.True(t, sim.TxEnabled())
	// second pump while transmitting does nothing.
	d.Pump()
	require.Equal(t, []byte("h"), sim.Sent())

	sim.Flush(d)
	require.Equal(t, []byte("ello"), sim.Sent())
	require.False(t, sim.TxEnabled())
	require.True(t, d.Out.IsEmpty())
	require.Zero(t, faults.Bits())
}

func TestTransmitReadyOnEmptyDisables(t *testing.T) {
	sim, d, faults := newSimDriver()
	sim.EnableTx(true)
	d.OnTransmitReady()
	require.False(t, sim.TxEnabled())
	// an empty buffer is checked first, so no underflow.
	require.Zero(t, faults.Bits())
}

func TestMaskBlocksInterrupts(t *testing.T) {
	sim, d, _ := newSimDriver()
	d.DisableRxTx()
	done := make(chan struct{})
	go func() {
		sim.Receive(d, 'x')
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("interrupt ran while masked")
	case <-time.After(20 * time.Millisecond):
	}
	d.EnableRxTx()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("interrupt not delivered after unmask")
	}
	require.Equal(t, 1, d.In.Len())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("%s: timeout", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type pipeStream struct {
	r *io.PipeReader
	w io.Writer
}

func (p *pipeStream) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeStream) Write(b []byte) (int, error) { return p.w.Write(b) }

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func TestStream(t *testing.T) {
	pr, pw := io.Pipe()
	out := &syncBuffer{}
	stream := NewStream(&pipeStream{r: pr, w: out})
	d := NewDriver(stream, fault.NewRegister(nil))
	stream.ISR = d

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- stream.Run(ctx) }()

	_, err := pw.Write([]byte("ping"))
	require.NoError(t, err)
	waitFor(t, "received", func() bool {
		d.DisableRxTx()
		defer d.EnableRxTx()
		return d.In.Len() == 4
	})

	d.SendString("pong")
	d.Pump()
	waitFor(t, "transmitted", func() bool {
		return out.String() == "pong" && !stream.TxEnabled()
	})

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	pw.Close()
}
