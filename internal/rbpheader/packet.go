package rbpheader

import (
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// CalculatePacketHeader packs an RBP >= 2.0 packet header word. It returns
// an error if called against a v1.x codec, since v1.x packets carry no
// packet header at all.
func (c *Codec) CalculatePacketHeader(packetType rbptypes.PacketType, counter uint16) (uint32, error) {
	if c.major < 2 {
		return 0, fmt.Errorf("rbp: packet headers do not exist in protocol %d.%d", c.major, c.minor)
	}

	word := uint32(packetType & 0xF)
	word |= uint32(ByteOrderMarker&0xF) << 4
	word |= uint32(counter) << 8
	word |= uint32(c.major&0xF) << 28
	return word, nil
}

// ExtractPacketHeader unpacks an RBP >= 2.0 packet header word, validating
// the byte-order marker and packet_type
func (c *Codec) ExtractPacketHeader(word uint32) (PacketHeader, error) {
	if c.major < 2 {
		return PacketHeader{}, fmt.Errorf("rbp: packet headers do not exist in protocol %d.%d", c.major, c.minor)
	}

	version := uint8(word >> 28)
	if version != c.major {
		return PacketHeader{}, fmt.Errorf("%w: packet header version %d does not match codec version %d", rbptypes.ErrIllegalPacketHeader, version, c.major)
	}

	byteOrder := uint8((word >> 4) & 0xF)
	if byteOrder != ByteOrderMarker {
		return PacketHeader{}, fmt.Errorf("%w: byte-order nibble %#x, expected %#x", rbptypes.ErrIllegalPacketHeader, byteOrder, ByteOrderMarker)
	}

	packetType := rbptypes.PacketType(word & 0xF)
	if packetType > rbptypes.Resend {
		return PacketHeader{}, fmt.Errorf("%w: unknown packet_type %d", rbptypes.ErrIllegalPacketHeader, packetType)
	}

	return PacketHeader{
		Version:       version,
		PacketCounter: uint16((word >> 8) & 0xFFFF),
		PacketType:    packetType,
		ByteOrder:     byteOrder,
	}, nil
}
