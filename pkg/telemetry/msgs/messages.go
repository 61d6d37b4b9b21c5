// Package msgs defines the protobuf messages published by the bridge.
package msgs

import (
	"github.com/golang/protobuf/proto"
)

// Report is one unit of device output.
type Report struct {
	DeviceID  string      `protobuf:"bytes,1,opt,name=device_id,proto3" json:"device_id,omitempty"`
	Timestamp int64       `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Mnemonic  string      `protobuf:"bytes,3,opt,name=mnemonic,proto3" json:"mnemonic,omitempty"`
	Value     int32       `protobuf:"varint,4,opt,name=value,proto3" json:"value,omitempty"`
	Result    *CalcResult `protobuf:"bytes,5,opt,name=result,proto3" json:"result,omitempty"`
	Text      string      `protobuf:"bytes,6,opt,name=text,proto3" json:"text,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Report) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Report) Reset() { *m = Report{} }

// String implements proto.Message.
func (m *Report) String() string { return proto.CompactTextString(m) }

// CalcResult is a calculator reply.
type CalcResult struct {
	PacketID uint32  `protobuf:"varint,1,opt,name=packet_id,proto3" json:"packet_id,omitempty"`
	Stack    []int32 `protobuf:"varint,2,rep,packed,name=stack,proto3" json:"stack,omitempty"`
	Failure  string  `protobuf:"bytes,3,opt,name=failure,proto3" json:"failure,omitempty"`
	Echo     string  `protobuf:"bytes,4,opt,name=echo,proto3" json:"echo,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *CalcResult) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CalcResult) Reset() { *m = CalcResult{} }

// String implements proto.Message.
func (m *CalcResult) String() string { return proto.CompactTextString(m) }

// Status is the retained bridge status.
type Status struct {
	DeviceID string `protobuf:"bytes,1,opt,name=device_id,proto3" json:"device_id,omitempty"`
	Online   bool   `protobuf:"varint,2,opt,name=online,proto3" json:"online,omitempty"`
	Grammar  string `protobuf:"bytes,3,opt,name=grammar,proto3" json:"grammar,omitempty"`
	Line     string `protobuf:"bytes,4,opt,name=line,proto3" json:"line,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Status) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }
