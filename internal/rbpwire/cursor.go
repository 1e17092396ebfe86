// Package rbpwire provides the word-buffer cursor and builder abstractions
// the engine, reliability layer and inspector use instead of the raw
// iterator pairs the C++ source walks.
package rbpwire

import (
	"fmt"
	"io"
)

// Cursor reads sequentially through a fixed []uint32, never advancing an
// external pointer — callers get back slices/words by value and an error
// instead of mutating an iterator the caller also holds.
type Cursor struct {
	words []uint32
	pos   int
}

// NewCursor wraps words for sequential reading from position zero.
func NewCursor(words []uint32) *Cursor {
	return &Cursor{words: words}
}

// ReadWord consumes and returns the next word.
func (c *Cursor) ReadWord() (uint32, error) {
	if c.pos >= len(c.words) {
		return 0, io.ErrUnexpectedEOF
	}
	w := c.words[c.pos]
	c.pos++
	return w, nil
}

// ReadSlice consumes and returns the next n words as a slice view over the
// underlying buffer (the caller must not retain it past the next mutation
// of the buffer the Cursor was built from).
func (c *Cursor) ReadSlice(n int) ([]uint32, error) {
	if n < 0 {
		return nil, fmt.Errorf("rbpwire: negative slice length %d", n)
	}
	if c.pos+n > len(c.words) {
		return nil, io.ErrUnexpectedEOF
	}
	s := c.words[c.pos : c.pos+n]
	c.pos += n
	return s, nil
}

// Remaining returns the number of unread words.
func (c *Cursor) Remaining() int {
	return len(c.words) - c.pos
}

// Done reports whether the cursor has consumed the whole buffer.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.words)
}

// Pos returns the current read offset, useful for error messages that
// point at a specific word.
func (c *Cursor) Pos() int {
	return c.pos
}
