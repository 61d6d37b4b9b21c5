package uart

import "sync"

// Sim is an in-process Hardware. Events are fired explicitly by the
// caller, which makes the interrupt interleaving deterministic.
type Sim struct {
	lock      sync.Mutex
	rx        byte
	txEnabled bool
	txBusy    bool
	sent      []byte
}

// ReadRx implements Hardware.
func (s *Sim) ReadRx() byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.rx
}

// WriteTx implements Hardware.
func (s *Sim) WriteTx(b byte) {
	s.lock.Lock()
	s.sent = append(s.sent, b)
	s.txBusy = true
	s.lock.Unlock()
}

// EnableTx implements Hardware.
func (s *Sim) EnableTx(on bool) {
	s.lock.Lock()
	s.txEnabled = on
	s.lock.Unlock()
}

// TxEnabled implements Hardware.
func (s *Sim) TxEnabled() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.txEnabled
}

// Receive latches each byte into the receive register and fires the
// receive interrupt.
func (s *Sim) Receive(isr ISR, p ...byte) {
	for _, b := range p {
		s.lock.Lock()
		s.rx = b
		s.lock.Unlock()
		isr.OnReceive()
	}
}

// Transmit completes the byte on the wire, if any, and fires the
// transmit-ready interrupt. It returns false when the line was idle.
func (s *Sim) Transmit(isr ISR) bool {
	s.lock.Lock()
	busy := s.txEnabled && s.txBusy
	s.txBusy = false
	s.lock.Unlock()
	if busy {
		isr.OnTransmitReady()
	}
	return busy
}

// Flush keeps firing transmit-ready until the transmitter goes idle.
func (s *Sim) Flush(isr ISR) {
	for s.Transmit(isr) {
	}
}

// Sent returns and clears the bytes written to the wire.
func (s *Sim) Sent() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	sent := s.sent
	s.sent = nil
	return sent
}
