// Package mnemonic implements the fixed form command grammar:
// a 3 letter mnemonic followed by a fixed width hex value, framed by
// '$' and '#'.
package mnemonic

import (
	"errors"
	"fmt"

	"github.com/robotalks/uartfw/pkg/fault"
)

// Packet markers.
const (
	Header byte = '$'
	End    byte = '#'
)

// MnemonicLen is the length of every mnemonic.
const MnemonicLen = 3

// Type is the command type.
type Type int

// Command types.
const (
	Undefined Type = iota
	Goo
	Terminate
	Speed
	Altitude
	Manual
	LED
	Distance
	Press
)

var typeNames = map[Type]string{
	Undefined: "Undefined",
	Goo:       "Goo",
	Terminate: "Terminate",
	Speed:     "Speed",
	Altitude:  "Altitude",
	Manual:    "Manual",
	LED:       "LED",
	Distance:  "Distance",
	Press:     "Press",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Command is a decoded command or report.
type Command struct {
	Type  Type
	Value int
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%d)", c.Type, c.Value)
}

// Entry maps a mnemonic to a command type and value width in hex digits.
type Entry struct {
	Mnemonic string
	Type     Type
	Width    int
}

// Table is a closed set of mnemonics. It is also the framer grammar
// for packets carrying those mnemonics.
type Table []Entry

// Requests are the commands accepted by the device.
var Requests = Table{
	{Mnemonic: "GOO", Type: Goo, Width: 4},
	{Mnemonic: "END", Type: Terminate, Width: 0},
	{Mnemonic: "SPD", Type: Speed, Width: 4},
	{Mnemonic: "ALT", Type: Altitude, Width: 4},
	{Mnemonic: "MAN", Type: Manual, Width: 2},
	{Mnemonic: "LED", Type: LED, Width: 2},
}

// Reports are the packets sent by the device.
var Reports = Table{
	{Mnemonic: "DST", Type: Distance, Width: 4},
	{Mnemonic: "ALT", Type: Altitude, Width: 4},
	{Mnemonic: "PRS", Type: Press, Width: 2},
}

var (
	// ErrUnknownType indicates a command type without a mnemonic in the table.
	ErrUnknownType = errors.New("no mnemonic for command type")
)

// Lookup matches mnemonic case sensitively. Unknown mnemonics yield
// Undefined with width -1.
func (t Table) Lookup(mnemonic []byte) (Type, int) {
	if len(mnemonic) == MnemonicLen {
		for _, e := range t {
			if string(mnemonic) == e.Mnemonic {
				return e.Type, e.Width
			}
		}
	}
	return Undefined, -1
}

// Find returns the entry for a command type.
func (t Table) Find(typ Type) (Entry, bool) {
	for _, e := range t {
		if e.Type == typ {
			return e, true
		}
	}
	return Entry{}, false
}

// Markers implements framer.Grammar.
func (t Table) Markers() (byte, byte) {
	return Header, End
}

// PrefixLen implements framer.Grammar.
func (t Table) PrefixLen() int {
	return MnemonicLen
}

// BodyLen implements framer.Grammar. An unknown mnemonic expects
// 3+(-1) bytes which no complete prefix can match.
func (t Table) BodyLen(prefix []byte) int {
	_, width := t.Lookup(prefix)
	return MnemonicLen + width
}

// Parse decodes a complete packet body.
func (t Table) Parse(body []byte) (Command, error) {
	if len(body) < MnemonicLen {
		return Command{}, fmt.Errorf("%w: body too short", fault.Packet)
	}
	typ, width := t.Lookup(body[:MnemonicLen])
	if typ == Undefined {
		return Command{}, fmt.Errorf("%w: undefined command %q", fault.Packet, body[:MnemonicLen])
	}
	if len(body) != MnemonicLen+width {
		return Command{}, fmt.Errorf("%w: %s expects %d value digits", fault.Packet, body[:MnemonicLen], width)
	}
	val, err := ParseHex(body[MnemonicLen:])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: typ, Value: val}, nil
}

// Encode formats cmd as a framed packet. The value is truncated to the
// width of the field.
func (t Table) Encode(cmd Command) ([]byte, error) {
	e, ok := t.Find(cmd.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, cmd.Type)
	}
	pkt := make([]byte, 0, MnemonicLen+e.Width+2)
	pkt = append(pkt, Header)
	pkt = append(pkt, e.Mnemonic...)
	pkt = AppendHex(pkt, cmd.Value, e.Width)
	return append(pkt, End), nil
}

const hexDigits = "0123456789abcdef"

// AppendHex appends the low width nibbles of v as lowercase hex.
func AppendHex(dst []byte, v, width int) []byte {
	for shift := (width - 1) * 4; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(v>>uint(shift))&0xf])
	}
	return dst
}

// ParseHex parses a fixed width hex field. An empty field is 0.
func ParseHex(digits []byte) (int, error) {
	if len(digits) > 7 {
		return 0, fmt.Errorf("%w: hex field %q too wide", fault.Syntax, digits)
	}
	val := 0
	for _, ch := range digits {
		var d byte
		switch {
		case ch >= '0' && ch <= '9':
			d = ch - '0'
		case ch >= 'a' && ch <= 'f':
			d = ch - 'a' + 10
		case ch >= 'A' && ch <= 'F':
			d = ch - 'A' + 10
		default:
			return 0, fmt.Errorf("%w: invalid hex digit %q", fault.Syntax, ch)
		}
		val = val<<4 | int(d)
	}
	return val, nil
}
