package uart

import (
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DefaultBaudRate matches the 57600 baud the firmware configures.
const DefaultBaudRate = 57600

// OpenSerial opens a serial port in 8N1 mode.
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, describeSerialErr(name, err)
	}
	return port, nil
}

// SerialPorts lists the serial ports present on the system.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}

func describeSerialErr(name string, err error) error {
	var code serial.PortErrorCode
	var portErr serial.PortError
	var portErrRef *serial.PortError
	switch {
	case errors.As(err, &portErrRef):
		code = portErrRef.Code()
	case errors.As(err, &portErr):
		code = portErr.Code()
	default:
		return fmt.Errorf("open %s: %w", name, err)
	}
	switch code {
	case serial.PortNotFound:
		return fmt.Errorf("serial port %s not found", name)
	case serial.PortBusy:
		return fmt.Errorf("serial port %s busy", name)
	case serial.PermissionDenied:
		return fmt.Errorf("serial port %s: permission denied", name)
	case serial.InvalidSpeed:
		return fmt.Errorf("serial port %s: invalid baud rate", name)
	}
	return fmt.Errorf("open %s: %w", name, err)
}
