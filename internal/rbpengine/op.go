// Package rbpengine implements the per-client TransactionEngine: staging
// operations into a capacity-bounded send buffer, reserving reply slots,
// and validating replies against what was staged.
package rbpengine

import (
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// Op describes one staged operation before it is packed into wire words.
type Op struct {
	Type    rbptypes.TransactionType
	Addr    uint32 // READ / NI_READ / WRITE / NI_WRITE / RMW_SUM / RMW_BITS
	Words   int    // word count: N for READ/NI_READ, len(Payload) for WRITE/NI_WRITE
	Payload []uint32
	AndTerm uint32 // RMW_BITS
	OrTerm  uint32 // RMW_BITS
	Addend  uint32 // RMW_SUM

	// Sink receives the reply payload (data words, or the single
	// "new value" word for the RMW opcodes) and/or the per-operation
	// info-code error. It is called synchronously during Dispatch,
	// never from a separate goroutine.
	Sink func(data []uint32, infoErr error)
}

// replyWords returns how many words this op's reply needs reserved,
// per opcode.
func replyWords(op Op) int {
	switch op.Type {
	case rbptypes.BOT, rbptypes.Write, rbptypes.NIWrite:
		return 0
	case rbptypes.Read, rbptypes.NIRead:
		return op.Words
	case rbptypes.RMWSum, rbptypes.RMWBits:
		return 1
	default:
		return 0
	}
}

// headerWordCount returns the value packed into the header's word_count
// field. For READ/NI_READ this is the number of words requested (N),
// not the single address word actually sent on the wire — the source
// uses word_count to tell the target how many words to read back, an
// idiosyncrasy carried over verbatim from ProtocolIPbus.hpp's
// CalculateHeader. For WRITE/NI_WRITE it is the payload length; for the
// RMW opcodes and BOT it is fixed.
func headerWordCount(op Op) int {
	switch op.Type {
	case rbptypes.BOT:
		return 0
	case rbptypes.Read, rbptypes.NIRead:
		return op.Words
	case rbptypes.Write, rbptypes.NIWrite:
		return len(op.Payload)
	case rbptypes.RMWSum, rbptypes.RMWBits:
		return 1
	default:
		return 0
	}
}

// requestWords returns how many operand words (after the header) this
// op contributes to the send buffer.
func requestWords(op Op) int {
	switch op.Type {
	case rbptypes.BOT:
		return 0
	case rbptypes.Read, rbptypes.NIRead:
		return 1
	case rbptypes.Write, rbptypes.NIWrite:
		return 1 + len(op.Payload)
	case rbptypes.RMWSum:
		return 2
	case rbptypes.RMWBits:
		return 3
	default:
		return 0
	}
}

// PendingOp is the FIFO expected-reply record the engine keeps per
// staged operation.
type PendingOp struct {
	Type          rbptypes.TransactionType
	TransactionID uint16
	ReplyWords    int
	Sink          func(data []uint32, infoErr error)
}
