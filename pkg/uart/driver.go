// Package uart moves bytes between the serial hardware and the ring
// buffers.
//
// The hardware raises two events: a byte has been received and the
// transmitter is ready for the next byte. Their handlers form the
// interrupt context and run with the interrupt mask held, so the main
// loop brackets multi-step buffer access with DisableRxTx/EnableRxTx
// (or Atomic) and never observes a half-updated buffer.
package uart

import (
	"sync"

	"github.com/robotalks/uartfw/pkg/fault"
	"github.com/robotalks/uartfw/pkg/ring"
)

// Hardware is the register level view of the serial peripheral.
type Hardware interface {
	// ReadRx returns the received byte (receive register).
	ReadRx() byte
	// WriteTx starts sending a byte (transmit register).
	WriteTx(byte)
	// EnableTx turns the transmitter on or off.
	EnableTx(bool)
	// TxEnabled reports whether the transmitter is on.
	TxEnabled() bool
}

// ISR is the pair of interrupt handlers invoked by Hardware.
type ISR interface {
	OnReceive()
	OnTransmitReady()
}

// Driver owns the inbound and outbound ring buffers.
type Driver struct {
	In  *ring.Buffer
	Out *ring.Buffer
	HW  Hardware

	// Notify is called after a byte is received, outside the mask.
	Notify func()

	mask sync.Mutex
}

// NewDriver creates a Driver reporting buffer errors to faults.
func NewDriver(hw Hardware, faults *fault.Register) *Driver {
	observer := ring.ObserverFuncs{
		Overflow:  func(*ring.Buffer) { faults.Raise(fault.Overflow) },
		Underflow: func(*ring.Buffer) { faults.Raise(fault.Underflow) },
	}
	return &Driver{
		In:  ring.New("in", observer),
		Out: ring.New("out", observer),
		HW:  hw,
	}
}

// OnReceive implements ISR.
func (d *Driver) OnReceive() {
	d.mask.Lock()
	d.In.Push(d.HW.ReadRx())
	d.mask.Unlock()
	if d.Notify != nil {
		d.Notify()
	}
}

// OnTransmitReady implements ISR.
func (d *Driver) OnTransmitReady() {
	d.mask.Lock()
	if d.Out.IsEmpty() {
		d.HW.EnableTx(false)
	} else {
		d.HW.WriteTx(d.Out.Pop())
	}
	d.mask.Unlock()
}

// DisableRxTx masks both receive and transmit interrupts.
// Every call must be paired with EnableRxTx.
func (d *Driver) DisableRxTx() {
	d.mask.Lock()
}

// EnableRxTx unmasks the interrupts.
func (d *Driver) EnableRxTx() {
	d.mask.Unlock()
}

// Atomic runs fn with interrupts masked.
func (d *Driver) Atomic(fn func()) {
	d.mask.Lock()
	defer d.mask.Unlock()
	fn()
}

// Send queues bytes for transmission, one masked push per byte.
func (d *Driver) Send(p []byte) {
	for _, b := range p {
		d.mask.Lock()
		d.Out.Push(b)
		d.mask.Unlock()
	}
}

// Enqueue queues bytes for transmission. The caller must hold the
// mask, e.g. from the interrupt context or inside Atomic.
func (d *Driver) Enqueue(p []byte) {
	for _, b := range p {
		d.Out.Push(b)
	}
}

// SendString is Send for text.
func (d *Driver) SendString(s string) {
	for i := 0; i < len(s); i++ {
		d.mask.Lock()
		d.Out.Push(s[i])
		d.mask.Unlock()
	}
}

// Pump primes the transmitter when output is pending and the line is
// idle. OnTransmitReady drains the rest.
func (d *Driver) Pump() {
	d.mask.Lock()
	if !d.Out.IsEmpty() && !d.HW.TxEnabled() {
		d.HW.EnableTx(true)
		d.HW.WriteTx(d.Out.Pop())
	}
	d.mask.Unlock()
}
