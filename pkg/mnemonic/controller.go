package mnemonic

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

// Outputs are the discrete outputs driven by commands.
type Outputs interface {
	// SetLED shows pattern code 0..4.
	SetLED(code int)
	// EnableSampling turns the altitude ADC on or off.
	EnableSampling(on bool)
	// WatchInput turns the press button watch on or off.
	WatchInput(on bool)
}

// LogOutputs logs output changes.
type LogOutputs struct{}

// SetLED implements Outputs.
func (LogOutputs) SetLED(code int) {
	glog.V(1).Infof("led pattern %d", code)
}

// EnableSampling implements Outputs.
func (LogOutputs) EnableSampling(on bool) {
	glog.V(1).Infof("sampling %v", on)
}

// WatchInput implements Outputs.
func (LogOutputs) WatchInput(on bool) {
	glog.V(1).Infof("input watch %v", on)
}

// Altitude levels reported from the quantized sample.
const (
	AltitudeLow     = 9000
	AltitudeMedium  = 10000
	AltitudeHigh    = 11000
	AltitudeHighest = 12000
)

// QuantizeAltitude maps a 10 bit ADC reading to an altitude level.
func QuantizeAltitude(raw int) int {
	switch {
	case raw < 256:
		return AltitudeLow
	case raw < 512:
		return AltitudeMedium
	case raw < 768:
		return AltitudeHigh
	}
	return AltitudeHighest
}

// MaxLEDCode is the largest LED pattern code.
const MaxLEDCode = 4

// PressPins are the input bits watched for presses.
const PressPins byte = 0xf0

var (
	// ErrTerminated indicates a command after END.
	ErrTerminated = errors.New("processing terminated")
)

// Controller holds the device state changed by commands and read by
// the periodic reports. Process runs in the main loop, Tick, Sample and
// InputChanged in the interrupt context; callers serialize them with
// the interrupt mask.
type Controller struct {
	Outputs Outputs

	target     int
	rate       int
	dstArmed   bool
	period     int
	ticks      int
	altitude   int
	manual     bool
	lastInput  byte
	pressed    bool
	pressedPin int
	led        int
	terminated bool
}

// NewController creates a Controller driving outputs.
func NewController(outputs Outputs) *Controller {
	if outputs == nil {
		outputs = LogOutputs{}
	}
	return &Controller{Outputs: outputs, altitude: AltitudeLow}
}

// Process applies a command.
func (c *Controller) Process(cmd Command) error {
	if c.terminated {
		return ErrTerminated
	}
	switch cmd.Type {
	case Goo:
		c.target = cmd.Value - c.rate
		c.dstArmed = true
	case Terminate:
		c.terminated = true
		c.dstArmed = false
		c.period = 0
		c.Outputs.EnableSampling(false)
		c.Outputs.WatchInput(false)
		glog.Info("processing terminated")
	case Speed:
		c.rate = cmd.Value
		c.target -= c.rate
	case Altitude:
		c.period = cmd.Value / 100
		c.Outputs.EnableSampling(c.period != 0)
		c.ticks = 0
	case Manual:
		c.manual = cmd.Value != 0
		c.pressed = false
		c.Outputs.WatchInput(c.manual)
	case LED:
		if cmd.Value >= 0 && cmd.Value <= MaxLEDCode {
			c.led = cmd.Value
			c.Outputs.SetLED(c.led)
		}
	default:
		return fmt.Errorf("unexpected command %s", cmd)
	}
	return nil
}

// Tick runs the periodic reports.
func (c *Controller) Tick(report func(Command)) {
	if c.terminated {
		return
	}
	if c.dstArmed {
		report(Command{Type: Distance, Value: c.target})
	}
	if c.period != 0 && c.ticks%c.period == 0 {
		report(Command{Type: Altitude, Value: c.altitude})
	}
	if c.manual && c.pressed {
		report(Command{Type: Press, Value: c.pressedPin})
		c.pressed = false
	}
	c.ticks++
}

// Sample records a 10 bit ADC reading.
func (c *Controller) Sample(raw int) {
	c.altitude = QuantizeAltitude(raw)
}

// InputChanged records the new state of the input port. A rising edge
// on a watched pin is reported by the next Tick while in manual mode.
func (c *Controller) InputChanged(port byte) {
	rising := (port ^ c.lastInput) & port & PressPins
	c.lastInput = port
	if !c.manual || rising == 0 {
		return
	}
	for pin := 4; pin < 8; pin++ {
		if rising&(1<<uint(pin)) != 0 {
			c.pressed, c.pressedPin = true, pin
		}
	}
}

// Target returns the remaining distance.
func (c *Controller) Target() int { return c.target }

// Rate returns the speed.
func (c *Controller) Rate() int { return c.rate }

// Period returns the altitude report period in ticks, 0 when off.
func (c *Controller) Period() int { return c.period }

// Manual returns whether manual mode is on.
func (c *Controller) Manual() bool { return c.manual }

// LEDCode returns the current LED pattern.
func (c *Controller) LEDCode() int { return c.led }

// Terminated returns whether END has been processed.
func (c *Controller) Terminated() bool { return c.terminated }
