// Package firmware composes the serial driver, the packet framer and
// one packet grammar into the tasks of the cooperative main loop.
package firmware

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartfw/pkg/fault"
	"github.com/robotalks/uartfw/pkg/framer"
	fx "github.com/robotalks/uartfw/pkg/framework"
	"github.com/robotalks/uartfw/pkg/ring"
	"github.com/robotalks/uartfw/pkg/uart"
)

// PacketGrammar is one wire protocol version.
type PacketGrammar interface {
	framer.Grammar
	// Dispatch handles a complete packet body in the main loop.
	Dispatch(fw *Firmware, id uint8, body []byte)
}

// Starter is implemented by grammars emitting output at start up.
type Starter interface {
	Start(fw *Firmware)
}

// TimerHandler is implemented by grammars with periodic work. Tick runs
// in the interrupt context with the mask held.
type TimerHandler interface {
	Tick(fw *Firmware)
}

// Firmware is the device: one driver, one framer, one grammar.
type Firmware struct {
	Driver  *uart.Driver
	Faults  *fault.Register
	Framer  *framer.Framer
	Grammar PacketGrammar

	// TickInterval is the timer interrupt period, 0 disables the timer.
	TickInterval time.Duration

	packetID uint8
	started  bool
	wake     func()
}

// New creates a Firmware on hw speaking grammar.
func New(hw uart.Hardware, grammar PacketGrammar, indicator fault.Indicator) *Firmware {
	if indicator == nil {
		indicator = fault.LogIndicator{}
	}
	faults := fault.NewRegister(indicator)
	return &Firmware{
		Driver:  uart.NewDriver(hw, faults),
		Faults:  faults,
		Framer:  framer.New(grammar),
		Grammar: grammar,
	}
}

// PacketID returns the id of the next dispatched packet.
func (f *Firmware) PacketID() uint8 {
	return f.packetID
}

// PacketTask consumes received bytes until the input is drained or a
// packet has been dispatched.
func (f *Firmware) PacketTask(ctx fx.TaskContext) error {
	for n := 0; n < ring.Capacity; n++ {
		if f.Framer.State() == framer.AwaitingDispatch {
			f.dispatch()
			ctx.TriggerNext()
			return nil
		}
		b, ok := f.receive()
		if !ok {
			return nil
		}
		if pr := f.Framer.Parse(b); pr.Err != nil {
			glog.V(1).Infof("framing: %v", pr.Err)
			f.Faults.Raise(fault.Packet)
		}
	}
	ctx.TriggerNext()
	return nil
}

func (f *Firmware) receive() (b byte, ok bool) {
	f.Driver.DisableRxTx()
	if !f.Driver.In.IsEmpty() {
		b, ok = f.Driver.In.Pop(), true
	}
	f.Driver.EnableRxTx()
	return
}

func (f *Firmware) dispatch() {
	body := f.Framer.Body()
	glog.V(2).Infof("packet %d: %q", f.packetID, body)
	f.Grammar.Dispatch(f, f.packetID, body)
	f.Framer.Dispatched()
	f.packetID++
}

// StartTask runs the grammar start up once.
func (f *Firmware) StartTask(ctx fx.TaskContext) error {
	if !f.started {
		f.started = true
		if s, ok := f.Grammar.(Starter); ok {
			s.Start(f)
		}
	}
	return nil
}

// OutputTask pumps the transmitter.
func (f *Firmware) OutputTask(ctx fx.TaskContext) error {
	f.Driver.Pump()
	return nil
}

// Tick fires the timer interrupt.
func (f *Firmware) Tick() {
	handler, ok := f.Grammar.(TimerHandler)
	if !ok {
		return
	}
	f.Driver.Atomic(func() { handler.Tick(f) })
	if f.wake != nil {
		f.wake()
	}
}

// AddToLoop implements framework.LoopAdder. Received bytes and timer
// ticks wake the loop up.
func (f *Firmware) AddToLoop(loop *fx.Loop) {
	f.wake = loop.TriggerNext
	f.Driver.Notify = loop.TriggerNext
	loop.AddTask(fx.PrLvTop, fx.TaskFunc(f.StartTask))
	loop.AddTask(fx.PrLvInput, fx.TaskFunc(f.PacketTask))
	loop.AddTask(fx.PrLvOutput, fx.TaskFunc(f.OutputTask))
	if _, ok := f.Grammar.(TimerHandler); ok && f.TickInterval > 0 {
		loop.AddRunnable(&fx.Ticker{Interval: f.TickInterval, Tick: f.Tick})
	}
}
