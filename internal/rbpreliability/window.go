// Package rbpreliability implements the RBP >= 2.0 reliability layer:
// outgoing packet counters, a sliding window of in-flight packets, and
// the STATUS/RESEND recovery sequence.
package rbpreliability

import (
	"time"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// DefaultWindowSize bounds how many unacknowledged packets the engine
// will track before declaring the session desynchronized.
const DefaultWindowSize = 16

// sentPacket is one in-flight CONTROL packet the window is tracking,
// kept so it can be resent byte-for-byte if the target reports it was
// never seen.
type sentPacket struct {
	counter uint16
	words   []uint32
	sentAt  time.Time
}

// Window tracks in-flight CONTROL packets for one client, in counter
// order, bounded to size entries.
//
// Window is not safe for concurrent use; like Engine it is scoped to
// one logical thread per client.
type Window struct {
	size    int
	packets []sentPacket
	next    uint16 // next counter to hand out; wraps, skipping 0
}

// NewWindow returns an empty Window with the given capacity.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{size: size, next: 1}
}

// NextCounter returns the next packet counter to use and advances the
// internal generator.
func (w *Window) NextCounter() uint16 {
	c := w.next
	if w.next == 0xFFFF {
		w.next = 1
	} else {
		w.next++
		if w.next == 0 {
			w.next = 1
		}
	}
	return c
}

// Record adds a packet to the in-flight window. It returns
// rbptypes.ErrDesynchronized if the window is already at capacity — the
// caller must reconcile (via Reconcile) before sending further packets.
func (w *Window) Record(counter uint16, words []uint32) error {
	if len(w.packets) >= w.size {
		return rbptypes.ErrDesynchronized
	}
	w.packets = append(w.packets, sentPacket{counter: counter, words: words, sentAt: time.Now()})
	return nil
}

// Ack removes a packet from the window once its reply has been
// validated, restoring capacity for future sends.
func (w *Window) Ack(counter uint16) {
	for i, p := range w.packets {
		if p.counter == counter {
			w.packets = append(w.packets[:i], w.packets[i+1:]...)
			return
		}
	}
}

// Oldest returns the oldest unacknowledged packet, or (sentPacket{},
// false) if the window is empty.
func (w *Window) Oldest() (counter uint16, words []uint32, ok bool) {
	if len(w.packets) == 0 {
		return 0, nil, false
	}
	p := w.packets[0]
	return p.counter, p.words, true
}

// Len reports how many packets are currently in flight.
func (w *Window) Len() int {
	return len(w.packets)
}
