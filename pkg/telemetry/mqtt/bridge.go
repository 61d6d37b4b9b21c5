package mqtt

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/uartfw/pkg/host"
	"github.com/robotalks/uartfw/pkg/mnemonic"
	"github.com/robotalks/uartfw/pkg/telemetry/msgs"
)

// Topic suffixes under <prefix><device-id>/.
const (
	TopicReport = "report"
	TopicCmd    = "cmd"
	TopicStatus = "status"
)

// PublishTimeout bounds the wait for a report to be handed to the broker.
const PublishTimeout = time.Second

// Bridge publishes device reports and forwards commands to the device.
type Bridge struct {
	Queue    *Queue
	Link     *host.Link
	DeviceID string
	// Line names the attached port, reported in status.
	Line string
}

// NewBridge creates a Bridge and makes it the report handler of link.
func NewBridge(q *Queue, link *host.Link, deviceID string) *Bridge {
	b := &Bridge{Queue: q, Link: link, DeviceID: deviceID}
	link.Handler = b
	return b
}

func (b *Bridge) topic(suffix string) string {
	return b.DeviceID + "/" + suffix
}

// SetWill registers the offline status as the last will.
func (b *Bridge) SetWill(opts *paho.ClientOptions, topicPrefix string) {
	opts.SetBinaryWill(topicPrefix+b.topic(TopicStatus), b.status(false), 1, true)
}

func (b *Bridge) status(online bool) []byte {
	data, err := proto.Marshal(&msgs.Status{
		DeviceID: b.DeviceID,
		Online:   online,
		Grammar:  b.Link.Grammar,
		Line:     b.Line,
	})
	if err != nil {
		panic(err)
	}
	return data
}

func (b *Bridge) publishStatus(online bool) paho.Token {
	return b.Queue.PubWith(b.topic(TopicStatus), b.status(online), 1, true)
}

// ReportMessage converts a Report into the published message.
func ReportMessage(deviceID string, r *host.Report) *msgs.Report {
	m := &msgs.Report{
		DeviceID:  deviceID,
		Timestamp: r.Time.UnixNano(),
		Text:      r.Text,
	}
	if cmd := r.Command; cmd != nil {
		if e, ok := mnemonic.Reports.Find(cmd.Type); ok {
			m.Mnemonic = e.Mnemonic
		}
		m.Value = int32(cmd.Value)
	}
	if resp := r.Response; resp != nil {
		m.Result = &msgs.CalcResult{
			PacketID: uint32(resp.ID),
			Stack:    resp.Stack,
			Failure:  resp.Failure,
			Echo:     resp.Echo,
		}
	}
	return m
}

// HandleReport implements host.ReportHandler.
func (b *Bridge) HandleReport(ctx context.Context, r *host.Report) {
	data, err := proto.Marshal(ReportMessage(b.DeviceID, r))
	if err != nil {
		glog.Errorf("encode report: %v", err)
		return
	}
	token := b.Queue.Pub(b.topic(TopicReport), data)
	if !token.WaitTimeout(PublishTimeout) {
		glog.Warningf("publish report timeout")
	} else if err := token.Error(); err != nil {
		glog.Warningf("publish report: %v", err)
	}
}

// HandleCommand forwards the payload as one packet body.
func (b *Bridge) HandleCommand(topic string, payload []byte) {
	glog.V(2).Infof("command %q", payload)
	if err := b.Link.SendBody(payload); err != nil {
		glog.Warningf("command %q: %v", payload, err)
	}
}

// Subscribe attaches the command handler.
func (b *Bridge) Subscribe() *Subscription {
	return b.Queue.Sub(b.topic(TopicCmd), b.HandleCommand)
}

// Run connects to the broker and bridges until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.Subscribe()
	defer sub.Close()
	b.Queue.OnConnect = func(*Queue) { b.publishStatus(true) }
	token := b.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	defer b.Queue.Close()
	<-ctx.Done()
	b.publishStatus(false).WaitTimeout(PublishTimeout)
	return ctx.Err()
}
