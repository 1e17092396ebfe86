// Package rbpheader packs and unpacks the 32-bit transaction and packet
// header words of the register-bus protocol (RBP), for both major
// versions (1.x and 2.0). A Codec is selected once per client from a
// (major, minor) version pair; all other components depend on it through
// the Header/PacketHeader value types rather than on raw words.
//
// Bit layout (identical field positions across 1.x and 2.0; only the
// accepted transaction-id range and a handful of validation idiosyncrasies
// differ between the two):
//
//	bits 31..28  version
//	bits 27..24  type_id
//	bits 23..16  word_count
//	bits 15..4   transaction_id (12 bits; v1.x clients never issue values
//	             >= 0x800, keeping the top bit clear so the field reads
//	             back as an 11-bit id on wire-compatible v1.x targets)
//	bits 3..0    info_code
//
// Packet header (RBP >= 2.0 only):
//
//	bits 0..3    packet_type
//	bits 4..7    byte_order (always 0xF)
//	bits 8..23   packet_counter
//	bits 24..27  reserved
//	bits 28..31  version
package rbpheader

import "github.com/ast0815/ipbus-software/internal/rbptypes"

// Header is the version-agnostic decoded form of a transaction header word.
type Header struct {
	Version       uint8
	Type          rbptypes.TransactionType
	WordCount     uint8
	TransactionID uint16
	InfoCode      uint8
}

// PacketHeader is the decoded form of an RBP >= 2.0 packet header word.
type PacketHeader struct {
	Version       uint8
	PacketCounter uint16
	PacketType    rbptypes.PacketType
	ByteOrder     uint8
}

// ByteOrderMarker is the sentinel nibble every RBP >= 2.0 packet header
// carries so a target that disagrees on endianness can detect it.
const ByteOrderMarker uint8 = 0xF

// MaxWordCount is the largest word count a transaction header can carry.
const MaxWordCount = 0xFF

// maxTransactionIDv1x is the highest transaction id a v1.x codec will
// accept; the field itself is 12 bits wide on the wire, but v1.x targets
// only guarantee the low 11 bits round-trip, so the codec enforces the
// narrower range.
const maxTransactionIDv1x = 0x7FF

// maxTransactionIDv2 is the highest transaction id a v2.0 codec will accept.
const maxTransactionIDv2 = 0xFFF
