package rbpinspector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

type recordingRequestVisitor struct {
	BaseRequestVisitor
	reads []uint32
}

func (v *recordingRequestVisitor) OnRead(_ uint16, addr uint32, _ uint8) {
	v.reads = append(v.reads, addr)
}

func TestWalkRequest_SingleReadV2(t *testing.T) {
	codec := rbpheader.NewCodec(2, 0)
	pktHeader, err := codec.CalculatePacketHeader(rbptypes.Control, 1)
	require.NoError(t, err)
	txHeader := codec.CalculateHeader(rbptypes.Read, 3, 0)

	v := &recordingRequestVisitor{}
	err = WalkRequest(2, 0, []uint32{pktHeader, txHeader, 0x1000}, v)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x1000}, v.reads)
}

type recordingReplyVisitor struct {
	BaseReplyVisitor
	data []uint32
}

func (v *recordingReplyVisitor) OnReadReply(_ uint16, data []uint32, _ uint8) {
	v.data = data
}

func TestWalkReply_SingleReadV2(t *testing.T) {
	codec := rbpheader.NewCodec(2, 0)
	pktHeader, err := codec.CalculatePacketHeader(rbptypes.Control, 1)
	require.NoError(t, err)
	txHeader := codec.CalculateHeader(rbptypes.Read, 3, 0)

	rv := &recordingReplyVisitor{}
	err = WalkReply(2, 0, []uint32{pktHeader, txHeader, 1, 2, 3}, rv)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, rv.data)
}

func TestWalkRequest_UnknownType(t *testing.T) {
	// Build a header with an unassigned type nibble by hand, without
	// going through CalculateHeader.
	word := uint32(1)<<28 | uint32(0x9)<<24
	err := WalkRequest(1, 3, []uint32{word}, &BaseRequestVisitor{})
	require.Error(t, err)
}

type botRecorder struct {
	BaseRequestVisitor
	called bool
}

func (r *botRecorder) OnBOT(uint16) { r.called = true }

func TestWalkRequest_V1HasNoPacketHeader(t *testing.T) {
	codec := rbpheader.NewCodec(1, 3)
	txHeader := codec.CalculateHeader(rbptypes.BOT, 0, 0)

	rec := &botRecorder{}
	err := WalkRequest(1, 3, []uint32{txHeader}, rec)
	require.NoError(t, err)
	assert.True(t, rec.called)
}
