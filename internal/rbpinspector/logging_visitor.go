package rbpinspector

import (
	"github.com/ast0815/ipbus-software/internal/rbplog"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// LoggingRequestVisitor logs one line per transaction via rbplog, the
// default RequestVisitor when no other diagnostic tool is attached.
type LoggingRequestVisitor struct {
	BaseRequestVisitor
}

func (LoggingRequestVisitor) OnBOT(txID uint16) {
	rbplog.Debug("bot", "tx_id", txID)
}

func (LoggingRequestVisitor) OnRead(txID uint16, addr uint32, wordCount uint8) {
	rbplog.Debug("read", "tx_id", txID, "addr", addr, "words", wordCount)
}

func (LoggingRequestVisitor) OnNIRead(txID uint16, addr uint32, wordCount uint8) {
	rbplog.Debug("ni_read", "tx_id", txID, "addr", addr, "words", wordCount)
}

func (LoggingRequestVisitor) OnWrite(txID uint16, addr uint32, payload []uint32) {
	rbplog.Debug("write", "tx_id", txID, "addr", addr, "words", len(payload))
}

func (LoggingRequestVisitor) OnNIWrite(txID uint16, addr uint32, payload []uint32) {
	rbplog.Debug("ni_write", "tx_id", txID, "addr", addr, "words", len(payload))
}

func (LoggingRequestVisitor) OnRMWSum(txID uint16, addr, addend uint32) {
	rbplog.Debug("rmw_sum", "tx_id", txID, "addr", addr, "addend", addend)
}

func (LoggingRequestVisitor) OnRMWBits(txID uint16, addr, andTerm, orTerm uint32) {
	rbplog.Debug("rmw_bits", "tx_id", txID, "addr", addr, "and", andTerm, "or", orTerm)
}

func (LoggingRequestVisitor) OnUnknownType(txID uint16, t rbptypes.TransactionType) {
	rbplog.Warn("unknown transaction type", "tx_id", txID, "type", t)
}

func (LoggingRequestVisitor) OnControlHeader(counter uint16) {
	rbplog.Debug("control packet", "counter", counter)
}

func (LoggingRequestVisitor) OnStatusHeader(counter uint16) {
	rbplog.Debug("status packet", "counter", counter)
}

func (LoggingRequestVisitor) OnResendHeader(counter uint16) {
	rbplog.Debug("resend packet", "counter", counter)
}

func (LoggingRequestVisitor) OnUnknownPacketHeader(word uint32) {
	rbplog.Warn("unknown packet header", "word", word)
}

// LoggingReplyVisitor logs one line per transaction reply via rbplog.
type LoggingReplyVisitor struct {
	BaseReplyVisitor
}

func (LoggingReplyVisitor) OnBOTReply(txID uint16, infoCode uint8) {
	rbplog.Debug("bot reply", "tx_id", txID, "info_code", infoCode)
}

func (LoggingReplyVisitor) OnReadReply(txID uint16, data []uint32, infoCode uint8) {
	rbplog.Debug("read reply", "tx_id", txID, "words", len(data), "info_code", infoCode)
}

func (LoggingReplyVisitor) OnNIReadReply(txID uint16, data []uint32, infoCode uint8) {
	rbplog.Debug("ni_read reply", "tx_id", txID, "words", len(data), "info_code", infoCode)
}

func (LoggingReplyVisitor) OnWriteReply(txID uint16, infoCode uint8) {
	rbplog.Debug("write reply", "tx_id", txID, "info_code", infoCode)
}

func (LoggingReplyVisitor) OnNIWriteReply(txID uint16, infoCode uint8) {
	rbplog.Debug("ni_write reply", "tx_id", txID, "info_code", infoCode)
}

func (LoggingReplyVisitor) OnRMWSumReply(txID uint16, newValue uint32, infoCode uint8) {
	rbplog.Debug("rmw_sum reply", "tx_id", txID, "new_value", newValue, "info_code", infoCode)
}

func (LoggingReplyVisitor) OnRMWBitsReply(txID uint16, newValue uint32, infoCode uint8) {
	rbplog.Debug("rmw_bits reply", "tx_id", txID, "new_value", newValue, "info_code", infoCode)
}

func (LoggingReplyVisitor) OnUnknownTypeReply(txID uint16, t rbptypes.TransactionType) {
	rbplog.Warn("unknown transaction type in reply", "tx_id", txID, "type", t)
}

func (LoggingReplyVisitor) OnControlHeader(counter uint16) {
	rbplog.Debug("control packet", "counter", counter)
}

func (LoggingReplyVisitor) OnStatusHeader(counter uint16) {
	rbplog.Debug("status packet", "counter", counter)
}

func (LoggingReplyVisitor) OnResendHeader(counter uint16) {
	rbplog.Debug("resend packet", "counter", counter)
}

func (LoggingReplyVisitor) OnUnknownPacketHeader(word uint32) {
	rbplog.Warn("unknown packet header", "word", word)
}

var (
	_ RequestVisitor = LoggingRequestVisitor{}
	_ ReplyVisitor   = LoggingReplyVisitor{}
)
