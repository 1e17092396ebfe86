package rbpengine

import (
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/rbpwire"
)

// DefaultBufferWords is the default send-buffer capacity in 32-bit words.
const DefaultBufferWords = 350

// Config tunes Engine behavior for the idiosyncrasies the source
// tolerates rather than treats as fatal.
type Config struct {
	// StrictWriteReplyCount rejects a WRITE/NI_WRITE reply whose
	// word_count isn't exactly zero. Default false: the source accepts
	// a small version-specific constant here without aborting the
	// packet.
	StrictWriteReplyCount bool
}

// Engine stages operations for one client into a single send buffer,
// tracks the FIFO of expected replies, and validates replies against
// them. It is not safe for concurrent use by multiple goroutines — one
// Engine is scoped to one logical thread.
type Engine struct {
	codec   *rbpheader.Codec
	builder *rbpwire.Builder
	pending []PendingOp
	nextID  uint16
	cfg     Config
}

// New returns an Engine bound to codec with a send buffer of
// bufferWords capacity.
func New(codec *rbpheader.Codec, bufferWords int, cfg Config) *Engine {
	return &Engine{
		codec:   codec,
		builder: rbpwire.NewBuilder(bufferWords),
		cfg:     cfg,
	}
}

func maxTransactionID(v rbptypes.Version) uint16 {
	if v.Major == 1 {
		return 0x7FF
	}
	return 0xFFF
}

// Stage packs op's header and operand words into the send buffer and
// reserves reply slots for it. It returns rbptypes.ErrWouldBlock,
// without mutating engine state, if op's word count exceeds 255 or if
// the buffer lacks room — the caller is expected to flush (Dispatch)
// and retry step 1.
func (e *Engine) Stage(op Op) error {
	hdrCount := headerWordCount(op)
	if hdrCount > int(rbpheader.MaxWordCount) {
		return fmt.Errorf("rbpengine: operation word count %d exceeds %d: %w", hdrCount, rbpheader.MaxWordCount, rbptypes.ErrWouldBlock)
	}
	operandWords := requestWords(op)
	if !e.builder.Fits(1 + operandWords) {
		return rbptypes.ErrWouldBlock
	}

	header := e.codec.CalculateHeader(op.Type, uint32(hdrCount), uint32(e.nextID))
	if err := e.builder.Append(header); err != nil {
		return err
	}

	switch op.Type {
	case rbptypes.BOT:
		// no operand words
	case rbptypes.Read, rbptypes.NIRead:
		if err := e.builder.Append(op.Addr); err != nil {
			return err
		}
	case rbptypes.Write, rbptypes.NIWrite:
		if err := e.builder.Append(op.Addr); err != nil {
			return err
		}
		if err := e.builder.Append(op.Payload...); err != nil {
			return err
		}
	case rbptypes.RMWSum:
		if err := e.builder.Append(op.Addr, op.Addend); err != nil {
			return err
		}
	case rbptypes.RMWBits:
		if err := e.builder.Append(op.Addr, op.AndTerm, op.OrTerm); err != nil {
			return err
		}
	}

	e.pending = append(e.pending, PendingOp{
		Type:          op.Type,
		TransactionID: e.nextID,
		ReplyWords:    replyWords(op),
		Sink:          op.Sink,
	})

	maxID := maxTransactionID(e.codec.Version())
	if e.nextID >= maxID {
		e.nextID = 0
	} else {
		e.nextID++
	}
	return nil
}

// SendWords returns the packed send buffer, ready for the packet
// header to be prepended (v2.0) and handed to a Transport.
func (e *Engine) SendWords() []uint32 {
	return e.builder.Words()
}

// PendingCount reports how many operations are awaiting a reply.
func (e *Engine) PendingCount() int {
	return len(e.pending)
}

// Reset clears the send buffer and pending-reply queue, leaving the
// next transaction id untouched (ids keep advancing across packets,
// only wrapping at the codec's id-space boundary).
func (e *Engine) Reset() {
	e.builder.Reset()
	e.pending = e.pending[:0]
}
