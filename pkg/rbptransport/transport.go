// Package rbptransport provides the two concrete word-oriented
// transports rbpengine.Engine and rbpreliability.Window dial through:
// UDP (the common IPbus-over-UDP case) and TCP (ControlHub and
// tcp-based targets), both satisfying rbpengine.Transport. The wire
// protocol logic is the interesting subsystem here, but a library that
// cannot be dialed cannot be exercised end-to-end, so straightforward
// net.Dial-based implementations are included too.
package rbptransport

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/pkg/rbpbufpool"
)

// Transport is the byte-pipe rbpengine.Engine and rbpreliability.Window
// depend on, expressed in terms of whole 32-bit words rather than raw
// bytes since RBP has no sub-word framing.
type Transport interface {
	Send(ctx context.Context, words []uint32) error
	Receive(ctx context.Context) ([]uint32, error)
	Close() error
}

func encodeWords(words []uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

func decodeWords(buf []byte) ([]uint32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("rbptransport: received %d bytes, not a whole number of words", len(buf))
	}
	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(buf[4*i:])
	}
	return words, nil
}

func deadlineFor(ctx context.Context, fallback time.Duration) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Now().Add(fallback)
}

// UDPTransport sends and receives one UDP datagram per packet, the
// natural framing for IPbus-over-UDP targets.
type UDPTransport struct {
	conn    *net.UDPConn
	timeout time.Duration
}

// DialUDP opens a UDP transport to addr ("host:port"). timeout bounds
// both Send and Receive when ctx carries no deadline of its own.
func DialUDP(addr string, timeout time.Duration) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("rbptransport: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("rbptransport: dial %s: %w", addr, err)
	}
	return &UDPTransport{conn: conn, timeout: timeout}, nil
}

func (t *UDPTransport) Send(ctx context.Context, words []uint32) error {
	if err := t.conn.SetWriteDeadline(deadlineFor(ctx, t.timeout)); err != nil {
		return fmt.Errorf("rbptransport: set write deadline: %w", err)
	}
	if _, err := t.conn.Write(encodeWords(words)); err != nil {
		return fmt.Errorf("rbptransport: %w: %v", rbptypes.ErrTransportTimeout, err)
	}
	return nil
}

func (t *UDPTransport) Receive(ctx context.Context) ([]uint32, error) {
	if err := t.conn.SetReadDeadline(deadlineFor(ctx, t.timeout)); err != nil {
		return nil, fmt.Errorf("rbptransport: set read deadline: %w", err)
	}
	buf := rbpbufpool.Default.Get(rbpbufpool.DatagramSize)
	defer rbpbufpool.Default.Put(buf)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("rbptransport: %w: %v", rbptypes.ErrTransportTimeout, err)
	}
	return decodeWords(buf[:n])
}

func (t *UDPTransport) Close() error { return t.conn.Close() }

// TCPTransport frames each packet with a 4-byte big-endian length
// prefix over a persistent stream connection, for ControlHub and
// tcp-based targets (chtcp-1.3, ipbustcp-1.3).
type TCPTransport struct {
	conn    net.Conn
	timeout time.Duration
}

// DialTCP opens a TCP transport to addr ("host:port").
func DialTCP(addr string, timeout time.Duration) (*TCPTransport, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("rbptransport: dial %s: %w", addr, err)
	}
	return &TCPTransport{conn: conn, timeout: timeout}, nil
}

func (t *TCPTransport) Send(ctx context.Context, words []uint32) error {
	if err := t.conn.SetWriteDeadline(deadlineFor(ctx, t.timeout)); err != nil {
		return fmt.Errorf("rbptransport: set write deadline: %w", err)
	}
	payload := encodeWords(words)
	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)
	if _, err := t.conn.Write(frame); err != nil {
		return fmt.Errorf("rbptransport: %w: %v", rbptypes.ErrTransportTimeout, err)
	}
	return nil
}

func (t *TCPTransport) Receive(ctx context.Context) ([]uint32, error) {
	if err := t.conn.SetReadDeadline(deadlineFor(ctx, t.timeout)); err != nil {
		return nil, fmt.Errorf("rbptransport: set read deadline: %w", err)
	}
	var lenBuf [4]byte
	if _, err := readFull(t.conn, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("rbptransport: %w: %v", rbptypes.ErrTransportTimeout, err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	payload := rbpbufpool.Default.Get(int(n))
	defer rbpbufpool.Default.Put(payload)
	if _, err := readFull(t.conn, payload); err != nil {
		return nil, fmt.Errorf("rbptransport: %w: %v", rbptypes.ErrTransportTimeout, err)
	}
	return decodeWords(payload)
}

func (t *TCPTransport) Close() error { return t.conn.Close() }

var (
	_ Transport = (*UDPTransport)(nil)
	_ Transport = (*TCPTransport)(nil)
)

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
