package rbptypes

import "errors"

// Configuration errors — abort the enclosing configuration call.
var (
	ErrUnknownProtocol               = errors.New("rbp: unknown protocol tag")
	ErrMalformedURI                  = errors.New("rbp: malformed uri")
	ErrIncorrectAddressTableFileCount = errors.New("rbp: address table expression must resolve to exactly one file")
	ErrFailedToOpenAddressTableFile  = errors.New("rbp: failed to open address table file")
	ErrNodeMustHaveUID               = errors.New("rbp: node must have a uid")
	ErrIncrementalNodeRequiresSize   = errors.New("rbp: incremental node requires a size attribute")
	ErrMaskedNodeCannotHaveChild     = errors.New("rbp: masked node cannot have children")
	ErrBlockAccessNodeCannotHaveChild = errors.New("rbp: non-incrementing (block access) node cannot have children")
	ErrLabelUnknownToClassFactory    = errors.New("rbp: class label unknown to class factory")
	ErrArraySizeExceedsRegisterBound = errors.New("rbp: incremental block exceeds 32-bit address space")
	ErrAddressSpaceOverlap           = errors.New("rbp: address space overlap")
)

// Protocol errors — abort the current dispatch and invalidate
// the client's reliability window.
var (
	ErrUnableToParseHeader    = errors.New("rbp: unable to parse header")
	ErrIllegalPacketHeader    = errors.New("rbp: illegal packet header")
	ErrReplyWordCountMismatch = errors.New("rbp: reply word count mismatch")
	ErrTransactionIDMismatch  = errors.New("rbp: transaction id mismatch")
	ErrPacketCounterMismatch  = errors.New("rbp: packet counter mismatch")
)

// Transport/resource errors.
var (
	ErrTransportTimeout  = errors.New("rbp: transport timeout")
	ErrDesynchronized    = errors.New("rbp: session desynchronized beyond recoverable window")
	ErrWouldBlock        = errors.New("rbp: staging would overflow the send buffer")
	ErrBufferFull        = errors.New("rbp: buffer at capacity")
)
