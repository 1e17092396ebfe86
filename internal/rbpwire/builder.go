package rbpwire

import "github.com/ast0815/ipbus-software/internal/rbptypes"

// Builder appends words into a capacity-bounded buffer, refusing to grow
// past capacity rather than reallocating.
type Builder struct {
	words    []uint32
	capacity int
}

// NewBuilder returns an empty Builder with the given word capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{words: make([]uint32, 0, capacity), capacity: capacity}
}

// Len returns the number of words currently staged.
func (b *Builder) Len() int {
	return len(b.words)
}

// Capacity returns the builder's fixed word capacity.
func (b *Builder) Capacity() int {
	return b.capacity
}

// Available returns how many more words can be appended before overflow.
func (b *Builder) Available() int {
	return b.capacity - len(b.words)
}

// Fits reports whether n more words can be appended without overflow.
func (b *Builder) Fits(n int) bool {
	return n <= b.Available()
}

// Append adds words to the buffer. It returns rbptypes.ErrBufferFull
// without mutating the buffer if doing so would exceed capacity — callers
// (rbpengine.Engine.Stage) check Fits first so this is a defensive
// fallback, never the primary control path.
func (b *Builder) Append(words ...uint32) error {
	if !b.Fits(len(words)) {
		return rbptypes.ErrBufferFull
	}
	b.words = append(b.words, words...)
	return nil
}

// Words returns the staged words. The returned slice aliases the
// Builder's storage; callers must not retain it across a Reset.
func (b *Builder) Words() []uint32 {
	return b.words
}

// Reset empties the buffer for reuse, keeping the underlying array.
func (b *Builder) Reset() {
	b.words = b.words[:0]
}
