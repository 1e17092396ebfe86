package rbpheader

import (
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// Codec packs/unpacks transaction and packet headers for one protocol
// version, parameterized by (major, minor) and selected once per client.
type Codec struct {
	major uint8
	minor uint8
}

// NewCodec returns a Codec for the given protocol version.
func NewCodec(major, minor uint8) *Codec {
	return &Codec{major: major, minor: minor}
}

// Version returns the (major, minor) pair this codec was built for.
func (c *Codec) Version() rbptypes.Version {
	return rbptypes.Version{Major: c.major, Minor: c.minor}
}

func (c *Codec) maxTransactionID() uint16 {
	if c.major == 1 {
		return maxTransactionIDv1x
	}
	return maxTransactionIDv2
}

// CalculateHeader packs a transaction header word. It never panics: each
// field is masked to its bit width (type to 4 bits, word count to 8,
// transaction id to 12), so out-of-range types, word counts or
// transaction ids are the caller's responsibility to avoid via
// maxTransactionID()/MaxWordCount, since this function has no error return
// in the reference design (callers — chiefly rbpengine.Engine — clamp
// before calling).
func (c *Codec) CalculateHeader(t rbptypes.TransactionType, wordCount uint32, transactionID uint32) uint32 {
	word := uint32(c.major&0xF) << 28
	word |= uint32(t&0xF) << 24
	word |= (wordCount & 0xFF) << 16
	word |= (transactionID & 0xFFF) << 4
	// info_code is always zero on the send side; the target fills it in.
	return word
}

// ExtractHeader unpacks a transaction header word. It returns
// rbptypes.ErrUnableToParseHeader for an unrecognized type_id or a version
// nibble that does not match this codec, never panicking — the engine
// treats this as fatal for the whole packet.
func (c *Codec) ExtractHeader(word uint32) (Header, error) {
	version := uint8(word >> 28)
	if version != c.major {
		return Header{}, fmt.Errorf("%w: header version %d does not match codec version %d", rbptypes.ErrUnableToParseHeader, version, c.major)
	}

	typeID := rbptypes.TransactionType((word >> 24) & 0xF)
	if !typeID.Valid() {
		return Header{}, fmt.Errorf("%w: unknown transaction type %d", rbptypes.ErrUnableToParseHeader, typeID)
	}

	h := Header{
		Version:       version,
		Type:          typeID,
		WordCount:     uint8((word >> 16) & 0xFF),
		TransactionID: uint16((word >> 4) & 0xFFF),
		InfoCode:      uint8(word & 0xF),
	}

	if h.TransactionID > c.maxTransactionID() {
		return Header{}, fmt.Errorf("%w: transaction id %#x exceeds %d.x range", rbptypes.ErrUnableToParseHeader, h.TransactionID, c.major)
	}

	return h, nil
}
