// Package ring provides the fixed-capacity byte queue shared between
// the interrupt context and the main loop.
package ring

// Capacity is the number of bytes a Buffer holds.
const Capacity = 128

// Observer is notified when a Buffer overflows or underflows.
type Observer interface {
	OnOverflow(*Buffer)
	OnUnderflow(*Buffer)
}

// ObserverFuncs adapts plain funcs to Observer. nil funcs are skipped.
type ObserverFuncs struct {
	Overflow  func(*Buffer)
	Underflow func(*Buffer)
}

// OnOverflow implements Observer.
func (f ObserverFuncs) OnOverflow(b *Buffer) {
	if f.Overflow != nil {
		f.Overflow(b)
	}
}

// OnUnderflow implements Observer.
func (f ObserverFuncs) OnUnderflow(b *Buffer) {
	if f.Underflow != nil {
		f.Underflow(b)
	}
}

// Buffer is a circular FIFO of bytes.
// The zero value is an empty buffer ready to use.
//
// All Capacity slots are usable: the count disambiguates full from
// empty, so a push into a full buffer overwrites the oldest unread byte
// and reports overflow.
type Buffer struct {
	Name     string
	Observer Observer

	data  [Capacity]byte
	head  int // next write position
	tail  int // next read position
	count int

	overflows  uint32
	underflows uint32
}

// New creates a named Buffer.
func New(name string, observer Observer) *Buffer {
	return &Buffer{Name: name, Observer: observer}
}

// IsEmpty reports whether there is no unread byte.
func (b *Buffer) IsEmpty() bool {
	return b.count == 0
}

// IsFull reports whether the next Push overwrites unread data.
func (b *Buffer) IsFull() bool {
	return b.count == Capacity
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return b.count
}

// Push appends v. When the buffer is already full the oldest unread
// byte is dropped and overflow is reported.
func (b *Buffer) Push(v byte) {
	full := b.count == Capacity
	b.data[b.head] = v
	b.head = (b.head + 1) % Capacity
	if full {
		b.tail = b.head
		b.overflows++
		if o := b.Observer; o != nil {
			o.OnOverflow(b)
		}
		return
	}
	b.count++
}

// Pop removes and returns the oldest byte.
// On an empty buffer it reports underflow and returns 0.
func (b *Buffer) Pop() byte {
	if b.count == 0 {
		b.underflows++
		if o := b.Observer; o != nil {
			o.OnUnderflow(b)
		}
		return 0
	}
	v := b.data[b.tail]
	b.tail = (b.tail + 1) % Capacity
	b.count--
	return v
}

// Reset drops all unread bytes. Counters are kept.
func (b *Buffer) Reset() {
	b.head, b.tail, b.count = 0, 0, 0
}

// Overflows returns how many pushes overwrote unread data.
func (b *Buffer) Overflows() uint32 {
	return b.overflows
}

// Underflows returns how many pops found the buffer empty.
func (b *Buffer) Underflows() uint32 {
	return b.underflows
}
