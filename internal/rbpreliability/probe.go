package rbpreliability

import (
	"fmt"

	"context"

	"github.com/ast0815/ipbus-software/internal/rbpengine"
	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// BasicProber is the default StatusProber: it sends a bare STATUS
// packet header and reads back one packet header, treating its
// packet_counter as both the last-received and last-replied value.
// Targets whose STATUS reply carries a richer payload distinguishing
// the two should supply their own StatusProber.
type BasicProber struct{}

// Probe implements StatusProber.
func (BasicProber) Probe(ctx context.Context, tr rbpengine.Transport, codec *rbpheader.Codec) (StatusReport, error) {
	header, err := codec.CalculatePacketHeader(rbptypes.Status, 0)
	if err != nil {
		return StatusReport{}, err
	}

	if err := tr.Send(ctx, []uint32{header}); err != nil {
		return StatusReport{}, fmt.Errorf("%w: %v", rbptypes.ErrTransportTimeout, err)
	}

	reply, err := tr.Receive(ctx)
	if err != nil {
		return StatusReport{}, fmt.Errorf("%w: %v", rbptypes.ErrTransportTimeout, err)
	}
	if len(reply) == 0 {
		return StatusReport{}, fmt.Errorf("rbpreliability: empty STATUS reply")
	}

	ph, err := codec.ExtractPacketHeader(reply[0])
	if err != nil {
		return StatusReport{}, err
	}
	if ph.PacketType != rbptypes.Status {
		return StatusReport{}, fmt.Errorf("rbpreliability: expected STATUS reply, got %s", ph.PacketType)
	}

	return StatusReport{LastReceived: ph.PacketCounter, LastReplied: ph.PacketCounter}, nil
}
