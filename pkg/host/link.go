// Package host talks to the firmware from the other end of the line.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartfw/pkg/calc"
	"github.com/robotalks/uartfw/pkg/firmware"
	"github.com/robotalks/uartfw/pkg/framer"
	"github.com/robotalks/uartfw/pkg/mnemonic"
)

var (
	// ErrMarkerInBody indicates a request body containing a packet marker.
	ErrMarkerInBody = errors.New("packet marker in body")
	// ErrWrongGrammar indicates a request not supported by the link grammar.
	ErrWrongGrammar = errors.New("request not supported by grammar")
	// ErrNoReply indicates the link stopped before a reply arrived.
	ErrNoReply = errors.New("no reply")
)

// Report is one unit of device output.
type Report struct {
	Time time.Time
	// Command is set for a mnemonic report.
	Command *mnemonic.Command
	// Response is set for a calculator reply line.
	Response *calc.Response
	// Text is set for any other calculator output line.
	Text string
}

func (r *Report) String() string {
	switch {
	case r.Command != nil:
		return r.Command.String()
	case r.Response != nil:
		return r.Response.String()
	}
	return r.Text
}

// ReportHandler receives reports not consumed by a pending request.
type ReportHandler interface {
	HandleReport(context.Context, *Report)
}

// HandleReportFunc is func type of ReportHandler.
type HandleReportFunc func(context.Context, *Report)

// HandleReport implements ReportHandler.
func (f HandleReportFunc) HandleReport(ctx context.Context, r *Report) {
	f(ctx, r)
}

// Link sends requests to the firmware and decodes its output.
type Link struct {
	ReadWriter io.ReadWriter
	Handler    ReportHandler
	Grammar    string

	reports *framer.Framer
	line    []byte

	writeLock sync.Mutex
	pending   []chan *calc.Response
	lock      sync.Mutex
}

// NewLink creates a Link for one of the firmware grammars.
func NewLink(rw io.ReadWriter, grammar string) (*Link, error) {
	l := &Link{ReadWriter: rw, Grammar: grammar}
	switch grammar {
	case firmware.GrammarMnemonic:
		l.reports = framer.New(mnemonic.Reports)
	case firmware.GrammarCalc:
	default:
		return nil, fmt.Errorf("unknown grammar %q", grammar)
	}
	return l, nil
}

func (l *Link) markers() (byte, byte) {
	if l.Grammar == firmware.GrammarCalc {
		return calc.Grammar{}.Markers()
	}
	return mnemonic.Requests.Markers()
}

// SendBody frames body and writes it.
func (l *Link) SendBody(body []byte) error {
	header, end := l.markers()
	if bytes.IndexByte(body, header) >= 0 || bytes.IndexByte(body, end) >= 0 {
		return ErrMarkerInBody
	}
	pkt := make([]byte, 0, len(body)+2)
	pkt = append(pkt, header)
	pkt = append(pkt, body...)
	pkt = append(pkt, end)
	return l.write(pkt)
}

func (l *Link) write(pkt []byte) error {
	l.writeLock.Lock()
	defer l.writeLock.Unlock()
	glog.V(3).Infof("send %q", pkt)
	_, err := l.ReadWriter.Write(pkt)
	return err
}

// Send writes a mnemonic command.
func (l *Link) Send(cmd mnemonic.Command) error {
	if l.Grammar != firmware.GrammarMnemonic {
		return ErrWrongGrammar
	}
	pkt, err := mnemonic.Requests.Encode(cmd)
	if err != nil {
		return err
	}
	return l.write(pkt)
}

// Calc evaluates expr, e.g. "1 2 +", and waits for the reply line.
// Replies are matched to requests in order.
func (l *Link) Calc(ctx context.Context, expr string) (*calc.Response, error) {
	if l.Grammar != firmware.GrammarCalc {
		return nil, ErrWrongGrammar
	}
	ch := make(chan *calc.Response, 1)
	l.lock.Lock()
	l.pending = append(l.pending, ch)
	l.lock.Unlock()
	if err := l.SendBody([]byte("C " + expr)); err != nil {
		l.cancel(ch)
		return nil, err
	}
	select {
	case <-ctx.Done():
		l.cancel(ch)
		return nil, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrNoReply
		}
		return resp, nil
	}
}

func (l *Link) cancel(ch chan *calc.Response) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for n, c := range l.pending {
		if c == ch {
			l.pending = append(l.pending[:n], l.pending[n+1:]...)
			return
		}
	}
}

// Run reads and decodes device output until ctx is done or the line
// fails.
func (l *Link) Run(ctx context.Context) error {
	defer l.abortPending()
	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			l.receive(ctx, b)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		n, err := l.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Link) receive(ctx context.Context, b byte) {
	if l.reports != nil {
		pr := l.reports.Parse(b)
		if pr.Err != nil {
			glog.Warningf("report: %v", pr.Err)
		}
		if pr.Body == nil {
			return
		}
		cmd, err := mnemonic.Reports.Parse(pr.Body)
		l.reports.Dispatched()
		if err != nil {
			glog.Warningf("report: %v", err)
			return
		}
		l.report(ctx, &Report{Time: time.Now(), Command: &cmd})
		return
	}
	if b != '\n' {
		l.line = append(l.line, b)
		return
	}
	line := string(l.line)
	l.line = l.line[:0]
	resp, err := calc.ParseResponse(line)
	if err != nil {
		l.report(ctx, &Report{Time: time.Now(), Text: line})
		return
	}
	l.lock.Lock()
	var ch chan *calc.Response
	if len(l.pending) > 0 {
		ch, l.pending = l.pending[0], l.pending[1:]
	}
	l.lock.Unlock()
	if ch != nil {
		ch <- resp
		return
	}
	l.report(ctx, &Report{Time: time.Now(), Response: resp})
}

func (l *Link) report(ctx context.Context, r *Report) {
	glog.V(2).Infof("report: %s", r)
	if l.Handler != nil {
		l.Handler.HandleReport(ctx, r)
	}
}

func (l *Link) abortPending() {
	l.lock.Lock()
	pending := l.pending
	l.pending = nil
	l.lock.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}
