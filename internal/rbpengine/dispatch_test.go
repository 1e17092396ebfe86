package rbpengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// fakeTransport returns a scripted reply regardless of what was sent.
type fakeTransport struct {
	reply []uint32
}

func (f *fakeTransport) Send(context.Context, []uint32) error { return nil }
func (f *fakeTransport) Receive(context.Context) ([]uint32, error) {
	return f.reply, nil
}

func TestScenario_DispatchAcceptsMatchingPacketCounter(t *testing.T) {
	codec := rbpheader.NewCodec(2, 0)
	e := New(codec, DefaultBufferWords, Config{})

	var got []uint32
	require.NoError(t, e.Stage(Op{
		Type: rbptypes.Read, Addr: 0x10, Words: 1,
		Sink: func(data []uint32, err error) { require.NoError(t, err); got = data },
	}))

	sentHeader, err := codec.CalculatePacketHeader(rbptypes.Control, 7)
	require.NoError(t, err)
	replyHeader, err := codec.CalculatePacketHeader(rbptypes.Control, 7)
	require.NoError(t, err)

	txReply := codec.CalculateHeader(rbptypes.Read, 1, 0)
	tr := &fakeTransport{reply: []uint32{replyHeader, txReply, 0xBEEF}}

	require.NoError(t, e.Dispatch(context.Background(), tr, &sentHeader))
	assert.Equal(t, []uint32{0xBEEF}, got)
}

func TestScenario_DispatchRejectsMismatchedPacketCounter(t *testing.T) {
	codec := rbpheader.NewCodec(2, 0)
	e := New(codec, DefaultBufferWords, Config{})

	require.NoError(t, e.Stage(Op{Type: rbptypes.Read, Addr: 0x10, Words: 1, Sink: func([]uint32, error) {}}))

	sentHeader, err := codec.CalculatePacketHeader(rbptypes.Control, 7)
	require.NoError(t, err)
	replyHeader, err := codec.CalculatePacketHeader(rbptypes.Control, 8) // wrong counter
	require.NoError(t, err)

	txReply := codec.CalculateHeader(rbptypes.Read, 1, 0)
	tr := &fakeTransport{reply: []uint32{replyHeader, txReply, 0xBEEF}}

	err = e.Dispatch(context.Background(), tr, &sentHeader)
	require.ErrorIs(t, err, rbptypes.ErrPacketCounterMismatch)
}

func TestScenario_DispatchRejectsNonControlReply(t *testing.T) {
	codec := rbpheader.NewCodec(2, 0)
	e := New(codec, DefaultBufferWords, Config{})

	require.NoError(t, e.Stage(Op{Type: rbptypes.Read, Addr: 0x10, Words: 1, Sink: func([]uint32, error) {}}))

	sentHeader, err := codec.CalculatePacketHeader(rbptypes.Control, 7)
	require.NoError(t, err)
	replyHeader, err := codec.CalculatePacketHeader(rbptypes.Status, 7) // wrong packet_type
	require.NoError(t, err)

	tr := &fakeTransport{reply: []uint32{replyHeader}}

	err = e.Dispatch(context.Background(), tr, &sentHeader)
	require.ErrorIs(t, err, rbptypes.ErrIllegalPacketHeader)
}
