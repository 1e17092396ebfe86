package rbpinspector

import (
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/rbpwire"
)

// walkPacketHeader consumes and classifies the packet header (v2.0+
// only), invoking the matching PacketVisitor hook. It returns
// (control=true, nil) when the caller should continue on to walk
// transactions, and (false, nil) when the packet was STATUS/RESEND and
// there is nothing further to walk.
func walkPacketHeader(version rbptypes.Version, codec *rbpheader.Codec, cur *rbpwire.Cursor, v PacketVisitor) (bool, error) {
	if !version.HasPacketHeader() {
		return true, nil
	}

	word, err := cur.ReadWord()
	if err != nil {
		return false, fmt.Errorf("rbpinspector: missing packet header: %w", err)
	}
	ph, err := codec.ExtractPacketHeader(word)
	if err != nil {
		v.OnUnknownPacketHeader(word)
		return false, err
	}

	switch ph.PacketType {
	case rbptypes.Status:
		v.OnStatusHeader(ph.PacketCounter)
		return false, nil
	case rbptypes.Resend:
		v.OnResendHeader(ph.PacketCounter)
		return false, nil
	case rbptypes.Control:
		v.OnControlHeader(ph.PacketCounter)
		return true, nil
	default:
		v.OnUnknownPacketHeader(word)
		return false, fmt.Errorf("rbpinspector: unrecognized packet_type %d", ph.PacketType)
	}
}

// WalkRequest parses words as one host-to-target RBP packet, invoking one RequestVisitor hook per transaction and per
// packet kind. It returns nil on clean exhaustion of the buffer.
func WalkRequest(major, minor uint8, words []uint32, v RequestVisitor) error {
	codec := rbpheader.NewCodec(major, minor)
	cur := rbpwire.NewCursor(words)
	version := rbptypes.Version{Major: major, Minor: minor}

	continue_, err := walkPacketHeader(version, codec, cur, v)
	if err != nil || !continue_ {
		return err
	}

	for !cur.Done() {
		word, err := cur.ReadWord()
		if err != nil {
			return fmt.Errorf("rbpinspector: failed reading transaction header: %w", err)
		}
		h, err := codec.ExtractHeader(word)
		if err != nil {
			return fmt.Errorf("rbpinspector: %w", err)
		}

		switch h.Type {
		case rbptypes.BOT:
			v.OnBOT(h.TransactionID)

		case rbptypes.Read:
			addr, err := cur.ReadWord()
			if err != nil {
				return err
			}
			v.OnRead(h.TransactionID, addr, h.WordCount)

		case rbptypes.NIRead:
			addr, err := cur.ReadWord()
			if err != nil {
				return err
			}
			v.OnNIRead(h.TransactionID, addr, h.WordCount)

		case rbptypes.Write:
			addr, payload, err := readAddrAndPayload(cur, h.WordCount)
			if err != nil {
				return err
			}
			v.OnWrite(h.TransactionID, addr, payload)

		case rbptypes.NIWrite:
			addr, payload, err := readAddrAndPayload(cur, h.WordCount)
			if err != nil {
				return err
			}
			v.OnNIWrite(h.TransactionID, addr, payload)

		case rbptypes.RMWSum:
			words, err := cur.ReadSlice(2)
			if err != nil {
				return err
			}
			v.OnRMWSum(h.TransactionID, words[0], words[1])

		case rbptypes.RMWBits:
			words, err := cur.ReadSlice(3)
			if err != nil {
				return err
			}
			v.OnRMWBits(h.TransactionID, words[0], words[1], words[2])

		default:
			v.OnUnknownType(h.TransactionID, h.Type)
			return fmt.Errorf("%w: transaction type %d", rbptypes.ErrUnableToParseHeader, h.Type)
		}
	}

	return nil
}

// WalkReply parses words as one target-to-host RBP packet, invoking
// one ReplyVisitor hook per transaction and per packet kind.
func WalkReply(major, minor uint8, words []uint32, v ReplyVisitor) error {
	codec := rbpheader.NewCodec(major, minor)
	cur := rbpwire.NewCursor(words)
	version := rbptypes.Version{Major: major, Minor: minor}

	continue_, err := walkPacketHeader(version, codec, cur, v)
	if err != nil || !continue_ {
		return err
	}

	for !cur.Done() {
		word, err := cur.ReadWord()
		if err != nil {
			return fmt.Errorf("rbpinspector: failed reading transaction header: %w", err)
		}
		h, err := codec.ExtractHeader(word)
		if err != nil {
			return fmt.Errorf("rbpinspector: %w", err)
		}

		switch h.Type {
		case rbptypes.BOT:
			v.OnBOTReply(h.TransactionID, h.InfoCode)

		case rbptypes.Read:
			data, err := cur.ReadSlice(int(h.WordCount))
			if err != nil {
				return err
			}
			v.OnReadReply(h.TransactionID, data, h.InfoCode)

		case rbptypes.NIRead:
			data, err := cur.ReadSlice(int(h.WordCount))
			if err != nil {
				return err
			}
			v.OnNIReadReply(h.TransactionID, data, h.InfoCode)

		case rbptypes.Write:
			if _, err := cur.ReadSlice(int(h.WordCount)); err != nil {
				return err
			}
			v.OnWriteReply(h.TransactionID, h.InfoCode)

		case rbptypes.NIWrite:
			if _, err := cur.ReadSlice(int(h.WordCount)); err != nil {
				return err
			}
			v.OnNIWriteReply(h.TransactionID, h.InfoCode)

		case rbptypes.RMWSum:
			data, err := cur.ReadSlice(int(h.WordCount))
			if err != nil {
				return err
			}
			var newValue uint32
			if len(data) > 0 {
				newValue = data[0]
			}
			v.OnRMWSumReply(h.TransactionID, newValue, h.InfoCode)

		case rbptypes.RMWBits:
			data, err := cur.ReadSlice(int(h.WordCount))
			if err != nil {
				return err
			}
			var newValue uint32
			if len(data) > 0 {
				newValue = data[0]
			}
			v.OnRMWBitsReply(h.TransactionID, newValue, h.InfoCode)

		default:
			v.OnUnknownTypeReply(h.TransactionID, h.Type)
			return fmt.Errorf("%w: transaction type %d", rbptypes.ErrUnableToParseHeader, h.Type)
		}
	}

	return nil
}

func readAddrAndPayload(cur *rbpwire.Cursor, wordCount uint8) (uint32, []uint32, error) {
	addr, err := cur.ReadWord()
	if err != nil {
		return 0, nil, err
	}
	payload, err := cur.ReadSlice(int(wordCount))
	if err != nil {
		return 0, nil, err
	}
	return addr, payload, nil
}
