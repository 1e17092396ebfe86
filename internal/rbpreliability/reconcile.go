package rbpreliability

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ast0815/ipbus-software/internal/rbpengine"
	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// StatusReport is what the engine learns from a STATUS round trip: the
// highest packet counter the target has received, and the highest it
// has replied to. The protocol only specifies that "the target replies
// with a status packet describing which counters it has seen and
// which it has replied to" without giving an exact payload layout, so
// this is the minimal shape the reconcile decision needs; a concrete
// Transport/codec pairing for a real target fills it in by decoding
// whatever status payload that deployment uses.
type StatusReport struct {
	LastReceived uint16
	LastReplied  uint16
}

// Action is what Reconcile decided the caller should do.
type Action int

const (
	// ActionResend re-sends the identical bytes under the same
	// counter: the target never saw the original packet.
	ActionResend Action = iota
	// ActionRequestResend issues a RESEND request for a specific
	// counter: the target replied, but the reply was lost in transit.
	ActionRequestResend
	// ActionDesynchronized means the gap between what the target has
	// seen and what the window expects exceeds the window size; the
	// session must be torn down.
	ActionDesynchronized
)

// StatusProber issues a STATUS request and decodes the target's report.
// Implementations own framing; rbpengine.Transport supplies the raw
// send/receive primitives.
type StatusProber interface {
	Probe(ctx context.Context, tr rbpengine.Transport, codec *rbpheader.Codec) (StatusReport, error)
}

// Reconcile runs the STATUS/RESEND recovery sequence for the oldest
// unacknowledged packet in the window. The STATUS probe runs under an
// errgroup-derived context so a slow target cannot hang the
// reconciliation past ctx's timeout; the corrective resend/RESEND that
// follows waits on that same ctx directly.
func (w *Window) Reconcile(ctx context.Context, tr rbpengine.Transport, codec *rbpheader.Codec, prober StatusProber) (Action, error) {
	counter, words, ok := w.Oldest()
	if !ok {
		return ActionResend, fmt.Errorf("rbpreliability: Reconcile called on an empty window")
	}

	var report StatusReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := prober.Probe(gctx, tr, codec)
		if err != nil {
			return err
		}
		report = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return ActionDesynchronized, fmt.Errorf("rbpreliability: status probe failed: %w", err)
	}

	gap := int(counter) - int(report.LastReceived)
	if gap < 0 {
		gap += 0x10000
	}
	if gap > w.size {
		return ActionDesynchronized, rbptypes.ErrDesynchronized
	}

	if report.LastReceived != counter {
		// Target never saw this packet at all.
		return ActionResend, w.resend(ctx, tr, codec, counter, words)
	}
	if report.LastReplied != counter {
		// Target saw and processed it but the reply was lost.
		return ActionRequestResend, w.requestResend(ctx, tr, codec, counter)
	}

	// Target both saw and replied; our receive path alone dropped the
	// reply in a way STATUS itself cannot distinguish from "lost in
	// flight" — request the resend to recover it.
	return ActionRequestResend, w.requestResend(ctx, tr, codec, counter)
}

func (w *Window) resend(ctx context.Context, tr rbpengine.Transport, _ *rbpheader.Codec, _ uint16, words []uint32) error {
	if err := tr.Send(ctx, words); err != nil {
		return fmt.Errorf("%w: %v", rbptypes.ErrTransportTimeout, err)
	}
	return nil
}

func (w *Window) requestResend(ctx context.Context, tr rbpengine.Transport, codec *rbpheader.Codec, counter uint16) error {
	header, err := codec.CalculatePacketHeader(rbptypes.Resend, counter)
	if err != nil {
		return err
	}
	if err := tr.Send(ctx, []uint32{header}); err != nil {
		return fmt.Errorf("%w: %v", rbptypes.ErrTransportTimeout, err)
	}
	return nil
}
