package rbpengine

import (
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/rbpwire"
)

// Validate pairs each pending operation, in staging order, with the
// corresponding transaction in replyWords and delivers its payload (or
// target-reported info-code error) to the op's sink. It implements
// these pairing rules:
//
//   - versions, transaction ids and opcodes must match;
//   - reply word_count must equal what was reserved, except WRITE/
//     NI_WRITE (tolerated unless Config.StrictWriteReplyCount) and
//     NI_READ (must match exactly, never tolerated);
//   - a non-zero info_code is a target-reported error surfaced on the
//     op's sink without aborting the rest of the packet.
//
// Any structural mismatch (length, opcode, id) is fatal: Validate
// returns rbptypes.ErrTransactionIDMismatch,
// rbptypes.ErrReplyWordCountMismatch, the header decoder's error for
// an unparsable header word, or a wrapped io.ErrUnexpectedEOF for a
// reply that ends early, immediately, leaving the
// remaining pending ops undelivered — the caller is expected to
// trigger recovery.
func (e *Engine) Validate(replyWords []uint32) error {
	cur := rbpwire.NewCursor(replyWords)

	for _, p := range e.pending {
		word, err := cur.ReadWord()
		if err != nil {
			return fmt.Errorf("rbpengine: reply buffer exhausted before transaction %#x: %w", p.TransactionID, err)
		}

		h, err := e.codec.ExtractHeader(word)
		if err != nil {
			return err
		}

		if h.Type != p.Type {
			return fmt.Errorf("%w: expected %s, got %s for transaction %#x", rbptypes.ErrTransactionIDMismatch, p.Type, h.Type, p.TransactionID)
		}
		if h.TransactionID != p.TransactionID {
			return fmt.Errorf("%w: expected %#x, got %#x", rbptypes.ErrTransactionIDMismatch, p.TransactionID, h.TransactionID)
		}

		if err := e.checkReplyWordCount(p, int(h.WordCount)); err != nil {
			return err
		}

		payload, err := cur.ReadSlice(int(h.WordCount))
		if err != nil {
			return fmt.Errorf("rbpengine: short reply payload for transaction %#x: %w", p.TransactionID, err)
		}

		var infoErr error
		if h.InfoCode != 0 {
			infoErr = fmt.Errorf("rbp: target reported info_code %#x for transaction %#x", h.InfoCode, p.TransactionID)
		}

		if p.Sink != nil {
			p.Sink(payload, infoErr)
		}
	}

	e.Reset()
	return nil
}

func (e *Engine) checkReplyWordCount(p PendingOp, got int) error {
	switch p.Type {
	case rbptypes.Write, rbptypes.NIWrite:
		if e.cfg.StrictWriteReplyCount && got != 0 {
			return fmt.Errorf("%w: WRITE reply carried %d words, expected 0", rbptypes.ErrReplyWordCountMismatch, got)
		}
		return nil
	case rbptypes.NIRead:
		if got != p.ReplyWords {
			return fmt.Errorf("%w: NI_READ reply carried %d words, requested %d", rbptypes.ErrReplyWordCountMismatch, got, p.ReplyWords)
		}
		return nil
	default:
		if got != p.ReplyWords {
			return fmt.Errorf("%w: %s reply carried %d words, expected %d", rbptypes.ErrReplyWordCountMismatch, p.Type, got, p.ReplyWords)
		}
		return nil
	}
}
