package rbpengine

import (
	"context"
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// Transport moves a packed word buffer to the target and returns the
// reply word buffer. Implementations (pkg/rbptransport) own framing
// and timeouts below this interface; they do not retransmit (resending
// is left to internal/rbpreliability). Dispatch only needs one round
// trip.
type Transport interface {
	Send(ctx context.Context, words []uint32) error
	Receive(ctx context.Context) ([]uint32, error)
}

// Dispatch sends the staged send buffer, optionally prefixed with a
// packet header built by the caller for RBP >= 2.0, reads back one
// reply buffer and validates it. On a transport error, the pending
// queue is left intact so the caller can retry via the reliability
// layer instead of losing the in-flight operations.
//
// For RBP >= 2.0, the reply's packet header must carry packet_type
// CONTROL and a packet_counter matching the one just sent; either
// mismatch aborts validation before any transaction header is parsed,
// since a reply under the wrong counter cannot be paired with this
// send's pending queue at all.
func (e *Engine) Dispatch(ctx context.Context, tr Transport, packetHeader *uint32) error {
	if len(e.pending) == 0 {
		return nil
	}

	out := e.builder.Words()
	if packetHeader != nil {
		framed := make([]uint32, 0, len(out)+1)
		framed = append(framed, *packetHeader)
		framed = append(framed, out...)
		out = framed
	}

	if err := tr.Send(ctx, out); err != nil {
		return fmt.Errorf("%w: %v", rbptypes.ErrTransportTimeout, err)
	}

	reply, err := tr.Receive(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", rbptypes.ErrTransportTimeout, err)
	}

	if packetHeader != nil {
		if len(reply) == 0 {
			return fmt.Errorf("rbpengine: empty reply, expected a packet header")
		}
		sentHeader, err := e.codec.ExtractPacketHeader(*packetHeader)
		if err != nil {
			return err
		}
		replyHeader, err := e.codec.ExtractPacketHeader(reply[0])
		if err != nil {
			return err
		}
		if replyHeader.PacketType != rbptypes.Control {
			return fmt.Errorf("%w: reply packet_type %s, expected %s", rbptypes.ErrIllegalPacketHeader, replyHeader.PacketType, rbptypes.Control)
		}
		if replyHeader.PacketCounter != sentHeader.PacketCounter {
			return fmt.Errorf("%w: reply packet counter %d, expected %d", rbptypes.ErrPacketCounterMismatch, replyHeader.PacketCounter, sentHeader.PacketCounter)
		}
		reply = reply[1:]
	}

	return e.Validate(reply)
}
