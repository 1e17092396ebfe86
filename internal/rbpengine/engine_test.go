package rbpengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

func newTestEngine(major, minor uint8, bufWords int) *Engine {
	return New(rbpheader.NewCodec(major, minor), bufWords, Config{})
}

func TestScenario_RMWBits(t *testing.T) {
	e := newTestEngine(2, 0, DefaultBufferWords)

	var got []uint32
	err := e.Stage(Op{
		Type:    rbptypes.RMWBits,
		Addr:    0x4,
		AndTerm: 0x0F,
		OrTerm:  0xA0,
		Sink: func(data []uint32, infoErr error) {
			require.NoError(t, infoErr)
			got = data
		},
	})
	require.NoError(t, err)

	words := e.SendWords()
	require.Len(t, words, 4) // header + addr, and, or
	h, err := rbpheader.NewCodec(2, 0).ExtractHeader(words[0])
	require.NoError(t, err)
	assert.Equal(t, rbptypes.RMWBits, h.Type)
	assert.Equal(t, uint32(0x4), words[1])
	assert.Equal(t, uint32(0x0F), words[2])
	assert.Equal(t, uint32(0xA0), words[3])

	codec := rbpheader.NewCodec(2, 0)
	replyHeader := codec.CalculateHeader(rbptypes.RMWBits, 1, 0)
	err = e.Validate([]uint32{replyHeader, 0xCAFEBABE})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xCAFEBABE}, got)
	assert.Zero(t, e.PendingCount())
}

func TestScenario_BufferOverflowThenStageAgain(t *testing.T) {
	// With capacity 350, stage 349 words, then a 5-word WRITE should
	// would-block; after a reset, staging succeeds.
	e := newTestEngine(1, 3, 350)

	// Fill to 349 words using BOT headers (1 word each) so the count is
	// exact and doesn't depend on operand shapes.
	for i := 0; i < 349; i++ {
		err := e.Stage(Op{Type: rbptypes.BOT})
		require.NoError(t, err)
	}
	require.Equal(t, 349, e.builder.Len())

	err := e.Stage(Op{
		Type:    rbptypes.Write,
		Addr:    0x10,
		Payload: []uint32{1, 2, 3, 4, 5},
	})
	require.ErrorIs(t, err, rbptypes.ErrWouldBlock)

	e.Reset()
	err = e.Stage(Op{
		Type:    rbptypes.Write,
		Addr:    0x10,
		Payload: []uint32{1, 2, 3, 4, 5},
	})
	require.NoError(t, err)
}

func TestScenario_MismatchedTransactionID(t *testing.T) {
	e := newTestEngine(2, 0, DefaultBufferWords)

	err := e.Stage(Op{Type: rbptypes.Read, Addr: 0x1000, Words: 1, Sink: func([]uint32, error) {}})
	require.NoError(t, err)

	codec := rbpheader.NewCodec(2, 0)
	// Reply claims transaction id 1 instead of the staged id 0.
	badHeader := codec.CalculateHeader(rbptypes.Read, 1, 1)
	err = e.Validate([]uint32{badHeader, 0xAAAA})
	require.ErrorIs(t, err, rbptypes.ErrTransactionIDMismatch)
}

func TestValidate_TargetReportedInfoCode(t *testing.T) {
	e := newTestEngine(1, 3, DefaultBufferWords)

	var sawErr error
	err := e.Stage(Op{
		Type:  rbptypes.Read,
		Addr:  0x20,
		Words: 1,
		Sink:  func(data []uint32, infoErr error) { sawErr = infoErr },
	})
	require.NoError(t, err)

	word := uint32(1)<<28 | uint32(rbptypes.Read)<<24 | uint32(1)<<16 | uint32(0)<<4 | uint32(0x4)
	err = e.Validate([]uint32{word, 0x1})
	require.NoError(t, err)
	require.Error(t, sawErr)
}

func TestValidate_NIReadStrictWordCount(t *testing.T) {
	e := newTestEngine(2, 0, DefaultBufferWords)
	err := e.Stage(Op{Type: rbptypes.NIRead, Addr: 0x8, Words: 4})
	require.NoError(t, err)

	codec := rbpheader.NewCodec(2, 0)
	shortReply := codec.CalculateHeader(rbptypes.NIRead, 2, 0)
	err = e.Validate([]uint32{shortReply, 1, 2})
	require.ErrorIs(t, err, rbptypes.ErrReplyWordCountMismatch)
}

func TestValidate_WriteReplyCountTolerant(t *testing.T) {
	e := newTestEngine(1, 3, DefaultBufferWords)
	err := e.Stage(Op{Type: rbptypes.Write, Addr: 0x4, Payload: []uint32{1}})
	require.NoError(t, err)

	codec := rbpheader.NewCodec(1, 3)
	reply := codec.CalculateHeader(rbptypes.Write, 0, 0)
	require.NoError(t, e.Validate([]uint32{reply}))
}

func TestValidate_WriteReplyCountStrict(t *testing.T) {
	e := New(rbpheader.NewCodec(1, 3), DefaultBufferWords, Config{StrictWriteReplyCount: true})
	err := e.Stage(Op{Type: rbptypes.Write, Addr: 0x4, Payload: []uint32{1}})
	require.NoError(t, err)

	codec := rbpheader.NewCodec(1, 3)
	reply := codec.CalculateHeader(rbptypes.Write, 1, 0)
	err = e.Validate([]uint32{reply, 0})
	require.ErrorIs(t, err, rbptypes.ErrReplyWordCountMismatch)
}
