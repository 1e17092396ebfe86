package rbpmetrics

import "time"

// TransactionMetrics observes TransactionEngine traffic: staged
// operations, dispatch round trips, and per-opcode reply outcomes.
// Implementations are optional; pass nil to disable collection.
type TransactionMetrics interface {
	// RecordOp records one completed operation.
	//
	// Parameters:
	//   - opcode: e.g. "read", "write", "ni_read", "ni_write", "rmw_bits", "rmw_sum"
	//   - infoCode: the reply's info_code name ("successful", "bad_header", ...)
	//   - duration: time from Stage to the resolved reply
	RecordOp(opcode string, infoCode string, duration time.Duration)

	// RecordDispatch records one flush of the staged-operation buffer.
	//
	// Parameters:
	//   - words: total words sent on the wire for this dispatch
	RecordDispatch(words int)

	// RecordWouldBlock counts a Stage call rejected because the buffer
	// is full (the caller must flush and retry).
	RecordWouldBlock()
}

// ReliabilityMetrics observes the sliding window recovery path (RBP
// >= 2 only).
type ReliabilityMetrics interface {
	// SetWindowOccupancy reports the current number of unacknowledged
	// packets held in the window.
	SetWindowOccupancy(count int)

	// RecordStatusProbe records one STATUS round trip and its outcome
	// ("ok", "timeout", "error").
	RecordStatusProbe(outcome string)

	// RecordResend counts one RESEND issued for a lost or nacked packet.
	RecordResend()

	// RecordDesynchronized counts recovery exhausting its attempt
	// budget without resolving (rbptypes.ErrDesynchronized).
	RecordDesynchronized()
}
