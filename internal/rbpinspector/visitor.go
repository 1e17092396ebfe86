// Package rbpinspector implements a stateless packet walker,
// re-expressing the source's virtual per-transaction hooks
// (IPbusInspector.hpp's HostToTargetInspector/TargetToHostInspector) as
// two capability-set interfaces passed by reference to the walker
// instead of two parallel template-specialized class hierarchies.
package rbpinspector

import "github.com/ast0815/ipbus-software/internal/rbptypes"

// RequestVisitor receives one call per transaction in a host-to-target
// packet, mirroring IPbusInspector.hpp's HostToTargetInspector hooks.
type RequestVisitor interface {
	OnBOT(txID uint16)
	OnRead(txID uint16, addr uint32, wordCount uint8)
	OnNIRead(txID uint16, addr uint32, wordCount uint8)
	OnWrite(txID uint16, addr uint32, payload []uint32)
	OnNIWrite(txID uint16, addr uint32, payload []uint32)
	OnRMWSum(txID uint16, addr, addend uint32)
	OnRMWBits(txID uint16, addr, andTerm, orTerm uint32)
	OnUnknownType(txID uint16, t rbptypes.TransactionType)
	PacketVisitor
}

// ReplyVisitor receives one call per transaction in a target-to-host
// packet, mirroring IPbusInspector.hpp's TargetToHostInspector hooks.
type ReplyVisitor interface {
	OnBOTReply(txID uint16, infoCode uint8)
	OnReadReply(txID uint16, data []uint32, infoCode uint8)
	OnNIReadReply(txID uint16, data []uint32, infoCode uint8)
	OnWriteReply(txID uint16, infoCode uint8)
	OnNIWriteReply(txID uint16, infoCode uint8)
	OnRMWSumReply(txID uint16, newValue uint32, infoCode uint8)
	OnRMWBitsReply(txID uint16, newValue uint32, infoCode uint8)
	OnUnknownTypeReply(txID uint16, t rbptypes.TransactionType)
	PacketVisitor
}

// PacketVisitor receives one call per packet kind, shared by both
// roles since packet headers carry no direction-specific fields.
type PacketVisitor interface {
	OnControlHeader(counter uint16)
	OnStatusHeader(counter uint16)
	OnResendHeader(counter uint16)
	OnUnknownPacketHeader(word uint32)
}

// BasePacketVisitor is a no-op PacketVisitor to embed.
type BasePacketVisitor struct{}

func (BasePacketVisitor) OnControlHeader(uint16)        {}
func (BasePacketVisitor) OnStatusHeader(uint16)         {}
func (BasePacketVisitor) OnResendHeader(uint16)         {}
func (BasePacketVisitor) OnUnknownPacketHeader(uint32)  {}

// BaseRequestVisitor is a no-op RequestVisitor; embed it to implement
// only the hooks a given tool cares about.
type BaseRequestVisitor struct {
	BasePacketVisitor
}

func (BaseRequestVisitor) OnBOT(uint16)                                   {}
func (BaseRequestVisitor) OnRead(uint16, uint32, uint8)                   {}
func (BaseRequestVisitor) OnNIRead(uint16, uint32, uint8)                 {}
func (BaseRequestVisitor) OnWrite(uint16, uint32, []uint32)               {}
func (BaseRequestVisitor) OnNIWrite(uint16, uint32, []uint32)             {}
func (BaseRequestVisitor) OnRMWSum(uint16, uint32, uint32)                {}
func (BaseRequestVisitor) OnRMWBits(uint16, uint32, uint32, uint32)       {}
func (BaseRequestVisitor) OnUnknownType(uint16, rbptypes.TransactionType) {}

// BaseReplyVisitor is a no-op ReplyVisitor; embed it to implement only
// the hooks a given tool cares about.
type BaseReplyVisitor struct {
	BasePacketVisitor
}

func (BaseReplyVisitor) OnBOTReply(uint16, uint8)                        {}
func (BaseReplyVisitor) OnReadReply(uint16, []uint32, uint8)              {}
func (BaseReplyVisitor) OnNIReadReply(uint16, []uint32, uint8)            {}
func (BaseReplyVisitor) OnWriteReply(uint16, uint8)                       {}
func (BaseReplyVisitor) OnNIWriteReply(uint16, uint8)                     {}
func (BaseReplyVisitor) OnRMWSumReply(uint16, uint32, uint8)              {}
func (BaseReplyVisitor) OnRMWBitsReply(uint16, uint32, uint8)             {}
func (BaseReplyVisitor) OnUnknownTypeReply(uint16, rbptypes.TransactionType) {}

var (
	_ RequestVisitor = BaseRequestVisitor{}
	_ ReplyVisitor   = BaseReplyVisitor{}
)
