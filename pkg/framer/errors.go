package framer

import (
	"errors"
	"fmt"

	"github.com/robotalks/uartfw/pkg/fault"
)

var (
	// ErrBusy indicates a byte was offered while a completed packet is
	// still waiting for dispatch.
	ErrBusy = errors.New("packet awaiting dispatch")
)

// Reason classifies framing errors.
type Reason int

// Framing error reasons.
const (
	LengthMismatch Reason = iota
	UnexpectedHeader
	BodyTooLong
)

// Error is a framing error. It matches fault.Packet with errors.Is.
type Error struct {
	Reason   Reason
	Size     int
	Expected int
}

// Error implements error.
func (e *Error) Error() string {
	switch e.Reason {
	case LengthMismatch:
		return fmt.Sprintf("packet length %d, expected %d", e.Size, e.Expected)
	case UnexpectedHeader:
		return fmt.Sprintf("unexpected header after %d body bytes", e.Size)
	case BodyTooLong:
		return fmt.Sprintf("packet body exceeds %d bytes", e.Expected)
	}
	return "packet format error"
}

// Unwrap returns fault.Packet.
func (e *Error) Unwrap() error {
	return fault.Packet
}
