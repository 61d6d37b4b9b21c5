// Package framer delimits packets in the inbound byte stream.
//
// A packet is a header marker, a body and an end marker. The markers
// and the body length rules come from a Grammar; the framer itself only
// tracks where in a packet the stream currently is. Only one packet is
// in flight: once a body completes the framer holds it until the
// caller marks it dispatched, and consumes no further bytes meanwhile.
package framer

// MaxBodySize is the largest body accepted.
const MaxBodySize = 128

// State is the framer state.
type State int

// Framer states.
const (
	AwaitingHeader State = iota
	AccumulatingBody
	AwaitingDispatch
)

func (s State) String() string {
	switch s {
	case AwaitingHeader:
		return "AwaitingHeader"
	case AccumulatingBody:
		return "AccumulatingBody"
	case AwaitingDispatch:
		return "AwaitingDispatch"
	}
	return "Unknown"
}

// Grammar supplies the wire rules for one protocol version.
type Grammar interface {
	// Markers returns the start and end of packet bytes.
	Markers() (header, end byte)
	// PrefixLen is the number of leading body bytes which determine the
	// expected body length. 0 disables the length check.
	PrefixLen() int
	// BodyLen returns the expected total body length for prefix.
	// A length which can never match marks the prefix as invalid.
	BodyLen(prefix []byte) int
}

// ParseResult is the outcome of one parsing step.
type ParseResult struct {
	State State
	// Body is set on the step that completes a packet.
	Body []byte
	// Err is set on a framing error.
	Err error
}

// Framer is the packet state machine. The zero value with Grammar set
// is ready to use.
type Framer struct {
	Grammar Grammar

	state    State
	body     [MaxBodySize]byte
	size     int
	expected int
}

// New creates a Framer for g.
func New(g Grammar) *Framer {
	return &Framer{Grammar: g}
}

// State returns the current state.
func (f *Framer) State() State {
	return f.state
}

// Body returns the completed body while AwaitingDispatch.
// The slice is only valid until Dispatched is called.
func (f *Framer) Body() []byte {
	if f.state != AwaitingDispatch {
		return nil
	}
	return f.body[:f.size:f.size]
}

// Dispatched releases the completed body and waits for the next header.
func (f *Framer) Dispatched() {
	if f.state == AwaitingDispatch {
		f.state, f.size = AwaitingHeader, 0
	}
}

// Reset drops any partial packet.
func (f *Framer) Reset() {
	f.state, f.size = AwaitingHeader, 0
}

// Parse consumes one byte. It must not be called while
// AwaitingDispatch, ErrBusy is returned in that case.
func (f *Framer) Parse(b byte) (pr ParseResult) {
	header, end := f.Grammar.Markers()
	switch f.state {
	case AwaitingHeader:
		if b == header {
			f.begin()
		}
	case AccumulatingBody:
		switch b {
		case end:
			if f.Grammar.PrefixLen() > 0 && f.size != f.expected {
				pr.Err = &Error{Reason: LengthMismatch, Size: f.size, Expected: f.expected}
				f.Reset()
				break
			}
			f.state = AwaitingDispatch
			pr.Body = f.Body()
		case header:
			// restart right here, the partial body is dropped.
			pr.Err = &Error{Reason: UnexpectedHeader, Size: f.size, Expected: f.expected}
			f.begin()
		default:
			if f.size >= MaxBodySize {
				pr.Err = &Error{Reason: BodyTooLong, Size: f.size + 1, Expected: MaxBodySize}
				f.Reset()
				break
			}
			f.body[f.size] = b
			f.size++
			if n := f.Grammar.PrefixLen(); n > 0 && f.size == n {
				f.expected = f.Grammar.BodyLen(f.body[:n])
			}
		}
	case AwaitingDispatch:
		pr.Err = ErrBusy
	}
	pr.State = f.state
	return
}

func (f *Framer) begin() {
	f.state, f.size, f.expected = AccumulatingBody, 0, -1
}
