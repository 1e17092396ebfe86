package rbpheader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

func TestCodec_RoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		major   uint8
		minor   uint8
		txType  rbptypes.TransactionType
		wc      uint32
		txID    uint32
	}{
		{"v1.3 read", 1, 3, rbptypes.Read, 3, 0x42},
		{"v1.3 write max words", 1, 3, rbptypes.Write, 255, maxTransactionIDv1x},
		{"v2.0 rmw_bits", 2, 0, rbptypes.RMWBits, 1, 0x123},
		{"v2.0 bot", 2, 0, rbptypes.BOT, 0, 0},
		{"v2.0 max id", 2, 0, rbptypes.ConfigSpace, 7, maxTransactionIDv2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCodec(tc.major, tc.minor)
			word := c.CalculateHeader(tc.txType, tc.wc, tc.txID)

			h, err := c.ExtractHeader(word)
			require.NoError(t, err)
			assert.Equal(t, tc.txType, h.Type)
			assert.Equal(t, uint8(tc.wc), h.WordCount)
			assert.Equal(t, uint16(tc.txID), h.TransactionID)
			assert.Equal(t, uint8(0), h.InfoCode)
			assert.Equal(t, tc.major, h.Version)
		})
	}
}

func TestCodec_ExtractHeader_UnknownType(t *testing.T) {
	c := NewCodec(2, 0)
	// type_id nibble 0x9 is unassigned.
	word := uint32(2)<<28 | uint32(0x9)<<24
	_, err := c.ExtractHeader(word)
	require.ErrorIs(t, err, rbptypes.ErrUnableToParseHeader)
}

func TestCodec_ExtractHeader_WrongVersion(t *testing.T) {
	c := NewCodec(2, 0)
	word := NewCodec(1, 3).CalculateHeader(rbptypes.Read, 1, 5)
	_, err := c.ExtractHeader(word)
	require.ErrorIs(t, err, rbptypes.ErrUnableToParseHeader)
}

func TestCodec_PacketHeader_RoundTrip(t *testing.T) {
	c := NewCodec(2, 0)
	word, err := c.CalculatePacketHeader(rbptypes.Control, 0xBEEF&0xFFFF)
	require.NoError(t, err)

	ph, err := c.ExtractPacketHeader(word)
	require.NoError(t, err)
	assert.Equal(t, rbptypes.Control, ph.PacketType)
	assert.Equal(t, uint16(0xBEEF), ph.PacketCounter)
	assert.Equal(t, ByteOrderMarker, ph.ByteOrder)
}

func TestCodec_PacketHeader_NotSupportedOnV1(t *testing.T) {
	c := NewCodec(1, 3)
	_, err := c.CalculatePacketHeader(rbptypes.Control, 1)
	require.Error(t, err)

	_, err = c.ExtractPacketHeader(0)
	require.Error(t, err)
}

func TestCodec_PacketHeader_IllegalByteOrder(t *testing.T) {
	c := NewCodec(2, 0)
	word := uint32(2)<<28 | uint32(0x0)<<4 | uint32(rbptypes.Control)
	_, err := c.ExtractPacketHeader(word)
	require.ErrorIs(t, err, rbptypes.ErrIllegalPacketHeader)
}

func TestScenario_SingleReadV2(t *testing.T) {
	// End-to-end scenario: single READ, v2.0, 3 words from 0x1000.
	c := NewCodec(2, 0)

	pktHeader, err := c.CalculatePacketHeader(rbptypes.Control, 1)
	require.NoError(t, err)

	txHeader := c.CalculateHeader(rbptypes.Read, 3, 0)
	sendAddr := uint32(0x1000)

	words := []uint32{pktHeader, txHeader, sendAddr}
	require.Len(t, words, 3)

	ph, err := c.ExtractPacketHeader(words[0])
	require.NoError(t, err)
	assert.Equal(t, rbptypes.Control, ph.PacketType)

	h, err := c.ExtractHeader(words[1])
	require.NoError(t, err)
	assert.Equal(t, rbptypes.Read, h.Type)
	assert.Equal(t, uint8(3), h.WordCount)
}
