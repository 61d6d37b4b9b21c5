// Package fault defines the error kinds raised by the firmware and the
// latched register driving the discrete error outputs.
package fault

import (
	"errors"
	"sync"

	"github.com/golang/glog"
)

// Kind identifies one class of error. Each kind owns one output bit.
type Kind byte

// Error kinds, the values are the output bits.
const (
	Overflow  Kind = 0x01
	Underflow Kind = 0x02
	Packet    Kind = 0x04
	Syntax    Kind = 0x08
	Stack     Kind = 0x10
	Variable  Kind = 0x20
)

// Mask covers all error bits.
const Mask Kind = 0x3f

var messages = map[Kind]string{
	Overflow:  "IO buffer overflow!",
	Underflow: "IO buffer underflow!",
	Packet:    "Packet format error!",
	Syntax:    "Syntax error!",
	Stack:     "Stack error!",
	Variable:  "Variable error!",
}

// Message returns the human readable message reported on the wire.
func (k Kind) Message() string {
	return messages[k]
}

// Error implements error so a Kind can be returned directly.
func (k Kind) Error() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return "unknown error"
}

// Has reports whether all bits of kind are set in k.
func (k Kind) Has(kind Kind) bool {
	return k&kind == kind
}

// KindOf extracts the Kind carried by err.
func KindOf(err error) (Kind, bool) {
	var k Kind
	if errors.As(err, &k) {
		return k, true
	}
	return 0, false
}

// Indicator drives the discrete error outputs (one pin per Kind).
type Indicator interface {
	ShowFaults(Kind)
}

// IndicatorFunc is func form of Indicator.
type IndicatorFunc func(Kind)

// ShowFaults implements Indicator.
func (f IndicatorFunc) ShowFaults(k Kind) {
	f(k)
}

// LogIndicator logs output changes.
type LogIndicator struct{}

// ShowFaults implements Indicator.
func (LogIndicator) ShowFaults(k Kind) {
	if glog.V(2) {
		glog.Infof("fault pins: %06b", byte(k))
	}
}

// Register latches raised errors until cleared.
// It is written from both the interrupt context and the main loop.
type Register struct {
	Indicator Indicator

	lock    sync.Mutex
	bits    Kind
	message string
}

// NewRegister creates a Register driving the indicator.
func NewRegister(indicator Indicator) *Register {
	return &Register{Indicator: indicator}
}

// Raise sets the bit for kind and records its message as the latest.
func (r *Register) Raise(kind Kind) {
	r.lock.Lock()
	r.bits |= kind
	r.message = kind.Message()
	bits := r.bits
	r.lock.Unlock()
	glog.V(1).Infof("fault raised: %s", kind.Message())
	r.show(bits)
}

// Clear resets all bits and the latched message.
func (r *Register) Clear() {
	r.lock.Lock()
	changed := r.bits != 0
	r.bits, r.message = 0, ""
	r.lock.Unlock()
	if changed {
		r.show(0)
	}
}

// Bits returns the currently latched bits.
func (r *Register) Bits() Kind {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.bits
}

// Message returns the message of the most recently raised error,
// or empty if nothing is latched.
func (r *Register) Message() string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.message
}

func (r *Register) show(bits Kind) {
	if ind := r.Indicator; ind != nil {
		ind.ShowFaults(bits)
	}
}
