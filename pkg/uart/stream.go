package uart

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"
)

// Stream is a Hardware backed by a byte stream, e.g. a serial port or
// a websocket connection. Received bytes and completed transmissions
// are delivered to ISR from the goroutines started by Run.
type Stream struct {
	ReadWriter io.ReadWriter
	ISR        ISR

	rx        byte
	txCh      chan byte
	txEnabled bool
	lock      sync.Mutex
}

// NewStream creates a Stream over rw.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{ReadWriter: rw, txCh: make(chan byte, 1)}
}

// ReadRx implements Hardware.
func (s *Stream) ReadRx() byte {
	return s.rx
}

// WriteTx implements Hardware.
// A byte is only written after the previous one completed, so the
// single slot transmit register is free unless the stream stopped.
func (s *Stream) WriteTx(b byte) {
	select {
	case s.txCh <- b:
	default:
		glog.Warningf("TX overrun, drop %02x", b)
	}
}

// EnableTx implements Hardware.
func (s *Stream) EnableTx(on bool) {
	s.lock.Lock()
	s.txEnabled = on
	s.lock.Unlock()
}

// TxEnabled implements Hardware.
func (s *Stream) TxEnabled() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.txEnabled
}

// Run services the stream until ctx is done or the stream fails.
func (s *Stream) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.receiveLoop(errCh)
	go s.transmitLoop(subCtx, errCh)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Stream) receiveLoop(errCh chan<- error) {
	buf := make([]byte, 1)
	for {
		n, err := s.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		glog.V(4).Infof("RX %02x", buf[0])
		s.rx = buf[0]
		s.ISR.OnReceive()
	}
}

func (s *Stream) transmitLoop(ctx context.Context, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-s.txCh:
			glog.V(4).Infof("TX %02x", b)
			if _, err := s.ReadWriter.Write([]byte{b}); err != nil {
				errCh <- err
				return
			}
			s.ISR.OnTransmitReady()
		}
	}
}
