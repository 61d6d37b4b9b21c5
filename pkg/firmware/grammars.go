package firmware

import (
	"errors"

	"github.com/golang/glog"

	"github.com/robotalks/uartfw/pkg/calc"
	"github.com/robotalks/uartfw/pkg/fault"
	"github.com/robotalks/uartfw/pkg/mnemonic"
)

// Sampler reads the 10 bit altitude ADC.
type Sampler interface {
	Sample() int
}

// SamplerFunc is the func form of Sampler.
type SamplerFunc func() int

// Sample implements Sampler.
func (f SamplerFunc) Sample() int {
	return f()
}

// MnemonicGrammar drives a mnemonic.Controller. Errors only show on the
// fault outputs and are cleared by the next processed command.
type MnemonicGrammar struct {
	mnemonic.Table
	Controller *mnemonic.Controller
	Reports    mnemonic.Table
	Sampler    Sampler
}

// NewMnemonicGrammar creates the grammar with the standard tables.
func NewMnemonicGrammar(outputs mnemonic.Outputs) *MnemonicGrammar {
	return &MnemonicGrammar{
		Table:      mnemonic.Requests,
		Controller: mnemonic.NewController(outputs),
		Reports:    mnemonic.Reports,
	}
}

// Dispatch implements PacketGrammar.
func (g *MnemonicGrammar) Dispatch(fw *Firmware, id uint8, body []byte) {
	cmd, err := g.Table.Parse(body)
	if err == nil {
		fw.Driver.Atomic(func() { err = g.Controller.Process(cmd) })
	}
	switch {
	case err == nil:
		glog.V(1).Infof("packet %d: %s", id, cmd)
		fw.Faults.Clear()
	case errors.Is(err, mnemonic.ErrTerminated):
		glog.V(1).Infof("packet %d ignored: %v", id, err)
	default:
		glog.Warningf("packet %d: %v", id, err)
		kind, ok := fault.KindOf(err)
		if !ok {
			kind = fault.Packet
		}
		fw.Faults.Raise(kind)
	}
}

// Tick implements TimerHandler.
func (g *MnemonicGrammar) Tick(fw *Firmware) {
	if g.Sampler != nil && g.Controller.Period() != 0 {
		g.Controller.Sample(g.Sampler.Sample())
	}
	g.Controller.Tick(func(cmd mnemonic.Command) {
		pkt, err := g.Reports.Encode(cmd)
		if err != nil {
			glog.Errorf("report %s: %v", cmd, err)
			return
		}
		fw.Driver.Enqueue(pkt)
	})
}

// InputChanged fires the input port change interrupt.
func (g *MnemonicGrammar) InputChanged(fw *Firmware, port byte) {
	fw.Driver.Atomic(func() { g.Controller.InputChanged(port) })
}

// CalcGrammar evaluates postfix expressions and replies with one line
// per packet.
type CalcGrammar struct {
	calc.Grammar
	Calculator calc.Calculator
}

// NewCalcGrammar creates the calculator grammar.
func NewCalcGrammar() *CalcGrammar {
	return &CalcGrammar{}
}

// Start implements Starter.
func (g *CalcGrammar) Start(fw *Firmware) {
	fw.Driver.SendString(calc.Banner)
}

// Dispatch implements PacketGrammar. Any fault latched since the last
// reply, including framing and buffer errors, replaces the result.
func (g *CalcGrammar) Dispatch(fw *Firmware, id uint8, body []byte) {
	result, err := g.Calculator.Evaluate(body)
	resp := calc.Response{ID: id, Stack: result, Body: body}
	var calcErr *calc.Error
	if errors.As(err, &calcErr) {
		glog.V(1).Infof("packet %d: %v", id, err)
		fw.Faults.Raise(calcErr.Kind)
		if calcErr.Kind == fault.Syntax || calcErr.Kind == fault.Variable {
			resp.Mark = &calcErr.Token
		}
	}
	resp.Failure = fw.Faults.Message()
	fw.Driver.Send(resp.Append(nil))
	fw.Faults.Clear()
}
