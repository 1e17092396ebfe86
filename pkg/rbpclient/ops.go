package rbpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/ast0815/ipbus-software/internal/addrtree"
	"github.com/ast0815/ipbus-software/internal/rbpengine"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

func requirePermission(n *addrtree.Node, p addrtree.Permission) error {
	if n.Permissions&p == 0 {
		return fmt.Errorf("rbpclient: node %q does not permit %s", n.UID, p)
	}
	return nil
}

// recordOp reports one completed operation to the attached
// TransactionMetrics sink, if any.
func (c *Client) recordOp(opcode string, started time.Time, err error) {
	if c.txMetrics == nil {
		return
	}
	infoCode := "successful"
	if err != nil {
		infoCode = "error"
	}
	c.txMetrics.RecordOp(opcode, infoCode, time.Since(started))
}

// Read reads the single register at path and returns its value.
func (c *Client) Read(ctx context.Context, path string) (uint32, error) {
	started := time.Now()
	n, err := c.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := requirePermission(n, addrtree.Read); err != nil {
		return 0, err
	}

	f := newFuture()
	op := rbpengine.Op{Type: rbptypes.Read, Addr: n.Addr, Words: 1, Sink: f.resolve}
	if err := c.stage(ctx, op); err != nil {
		return 0, err
	}
	if err := c.flush(ctx); err != nil {
		return 0, err
	}
	data, err := f.Wait(ctx)
	if err != nil {
		c.recordOp("read", started, err)
		return 0, err
	}
	if len(data) != 1 {
		err = fmt.Errorf("rbpclient: read of %q returned %d words, expected 1", path, len(data))
		c.recordOp("read", started, err)
		return 0, err
	}
	c.recordOp("read", started, nil)
	return data[0], nil
}

// ReadBlock reads count sequential words from an INCREMENTAL node, or
// the FIFO at a NON_INCREMENTAL node (NI_READ).
func (c *Client) ReadBlock(ctx context.Context, path string, count int) ([]uint32, error) {
	started := time.Now()
	n, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := requirePermission(n, addrtree.Read); err != nil {
		return nil, err
	}

	opType := rbptypes.Read
	opcode := "read_block"
	if n.Mode == addrtree.NonIncremental {
		opType = rbptypes.NIRead
		opcode = "ni_read"
	}

	f := newFuture()
	op := rbpengine.Op{Type: opType, Addr: n.Addr, Words: count, Sink: f.resolve}
	if err := c.stage(ctx, op); err != nil {
		return nil, err
	}
	if err := c.flush(ctx); err != nil {
		return nil, err
	}
	data, err := f.Wait(ctx)
	c.recordOp(opcode, started, err)
	return data, err
}

// Write writes a single value to the register at path.
func (c *Client) Write(ctx context.Context, path string, value uint32) error {
	started := time.Now()
	n, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := requirePermission(n, addrtree.Write); err != nil {
		return err
	}

	f := newFuture()
	op := rbpengine.Op{Type: rbptypes.Write, Addr: n.Addr, Payload: []uint32{value}, Sink: f.resolve}
	if err := c.stage(ctx, op); err != nil {
		return err
	}
	if err := c.flush(ctx); err != nil {
		return err
	}
	_, err = f.Wait(ctx)
	c.recordOp("write", started, err)
	return err
}

// WriteBlock writes payload to an INCREMENTAL node, or appends it to
// the FIFO at a NON_INCREMENTAL node (NI_WRITE).
func (c *Client) WriteBlock(ctx context.Context, path string, payload []uint32) error {
	started := time.Now()
	n, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := requirePermission(n, addrtree.Write); err != nil {
		return err
	}

	opType := rbptypes.Write
	opcode := "write_block"
	if n.Mode == addrtree.NonIncremental {
		opType = rbptypes.NIWrite
		opcode = "ni_write"
	}

	f := newFuture()
	op := rbpengine.Op{Type: opType, Addr: n.Addr, Payload: payload, Sink: f.resolve}
	if err := c.stage(ctx, op); err != nil {
		return err
	}
	if err := c.flush(ctx); err != nil {
		return err
	}
	_, err = f.Wait(ctx)
	c.recordOp(opcode, started, err)
	return err
}

// RMWBits performs v <- (v & andTerm) | orTerm at path and returns the
// post-image value.
func (c *Client) RMWBits(ctx context.Context, path string, andTerm, orTerm uint32) (uint32, error) {
	started := time.Now()
	n, err := c.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := requirePermission(n, addrtree.ReadWrite); err != nil {
		return 0, err
	}

	f := newFuture()
	op := rbpengine.Op{Type: rbptypes.RMWBits, Addr: n.Addr, AndTerm: andTerm, OrTerm: orTerm, Sink: f.resolve}
	if err := c.stage(ctx, op); err != nil {
		return 0, err
	}
	if err := c.flush(ctx); err != nil {
		return 0, err
	}
	data, err := f.Wait(ctx)
	if err != nil {
		c.recordOp("rmw_bits", started, err)
		return 0, err
	}
	v, err := singleWord(path, data)
	c.recordOp("rmw_bits", started, err)
	return v, err
}

// RMWSum performs v <- v + addend at path and returns the post-image
// value.
func (c *Client) RMWSum(ctx context.Context, path string, addend uint32) (uint32, error) {
	started := time.Now()
	n, err := c.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := requirePermission(n, addrtree.ReadWrite); err != nil {
		return 0, err
	}

	f := newFuture()
	op := rbpengine.Op{Type: rbptypes.RMWSum, Addr: n.Addr, Addend: addend, Sink: f.resolve}
	if err := c.stage(ctx, op); err != nil {
		return 0, err
	}
	if err := c.flush(ctx); err != nil {
		return 0, err
	}
	data, err := f.Wait(ctx)
	if err != nil {
		c.recordOp("rmw_sum", started, err)
		return 0, err
	}
	v, err := singleWord(path, data)
	c.recordOp("rmw_sum", started, err)
	return v, err
}

func singleWord(path string, data []uint32) (uint32, error) {
	if len(data) != 1 {
		return 0, fmt.Errorf("rbpclient: operation on %q returned %d words, expected 1", path, len(data))
	}
	return data[0], nil
}
