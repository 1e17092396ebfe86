// Package rbpclient binds one AddressTree, one TransactionEngine, one
// Transport, and (RBP >= 2 only) one reliability Window into the
// user-facing register-access surface, given a minimal concrete home
// here so the rest of the module is exercisable end-to-end.
package rbpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ast0815/ipbus-software/internal/addrtree"
	"github.com/ast0815/ipbus-software/internal/rbpengine"
	"github.com/ast0815/ipbus-software/internal/rbpheader"
	"github.com/ast0815/ipbus-software/internal/rbplog"
	"github.com/ast0815/ipbus-software/internal/rbpreliability"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/pkg/clientfactory"
	"github.com/ast0815/ipbus-software/pkg/rbpmetrics"
	"github.com/ast0815/ipbus-software/pkg/rbptransport"
)

// Option configures a Client at construction time.
type Option func(*config)

type config struct {
	timeout               time.Duration
	bufferWords           int
	windowSize            int
	strictWriteReplyCount bool
	txMetrics             rbpmetrics.TransactionMetrics
	relMetrics            rbpmetrics.ReliabilityMetrics
}

func defaultConfig() config {
	return config{
		timeout:     time.Second,
		bufferWords: rbpengine.DefaultBufferWords,
		windowSize:  rbpreliability.DefaultWindowSize,
	}
}

// WithTimeout sets the per-dispatch transport timeout.
func WithTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// WithBufferWords overrides the default send-buffer capacity.
func WithBufferWords(n int) Option { return func(c *config) { c.bufferWords = n } }

// WithWindowSize overrides the default reliability window size (RBP >= 2 only).
func WithWindowSize(n int) Option { return func(c *config) { c.windowSize = n } }

// WithStrictWriteReplyCount rejects WRITE/NI_WRITE replies whose
// word_count isn't exactly zero, for callers that want the stricter
// reading of an ambiguous reply format enforced rather than tolerated.
func WithStrictWriteReplyCount() Option { return func(c *config) { c.strictWriteReplyCount = true } }

// WithTransactionMetrics attaches a TransactionMetrics sink. Passing
// nil (the default) disables transaction metrics collection.
func WithTransactionMetrics(m rbpmetrics.TransactionMetrics) Option {
	return func(c *config) { c.txMetrics = m }
}

// WithReliabilityMetrics attaches a ReliabilityMetrics sink (RBP >= 2
// only; ignored for v1.x clients since they have no Window).
func WithReliabilityMetrics(m rbpmetrics.ReliabilityMetrics) Option {
	return func(c *config) { c.relMetrics = m }
}

// Client is one logical connection to a target endpoint. It is not
// safe for concurrent use: staging, dispatch and validation are all
// scoped to one logical thread.
type Client struct {
	sessionID uuid.UUID
	version   rbptypes.Version
	codec     *rbpheader.Codec
	engine    *rbpengine.Engine
	transport rbptransport.Transport
	window    *rbpreliability.Window
	prober    rbpreliability.StatusProber
	tree      *addrtree.Tree
	timeout   time.Duration

	txMetrics  rbpmetrics.TransactionMetrics
	relMetrics rbpmetrics.ReliabilityMetrics
}

// SessionID identifies this client instance in its recovery log
// lines — useful once a process holds several Clients against
// different endpoints. No metric carries it as a label.
func (c *Client) SessionID() uuid.UUID { return c.sessionID }

// New parses uri, dials the matching transport via factory
// (pkg/clientfactory), and wires an Engine (and, for RBP >= 2, a
// reliability Window) around it. tree is the pre-built, immutable
// AddressTree used to resolve symbolic paths.
func New(uri string, tree *addrtree.Tree, factory *clientfactory.Registry, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tr, version, err := factory.Dial(uri, cfg.timeout)
	if err != nil {
		return nil, err
	}

	codec := rbpheader.NewCodec(version.Major, version.Minor)
	engine := rbpengine.New(codec, cfg.bufferWords, rbpengine.Config{StrictWriteReplyCount: cfg.strictWriteReplyCount})

	c := &Client{
		sessionID: uuid.New(),
		version:   version,
		codec:     codec,
		engine:    engine,
		transport: tr,
		tree:      tree,
		timeout:   cfg.timeout,
		prober:    rbpreliability.BasicProber{},

		txMetrics:  cfg.txMetrics,
		relMetrics: cfg.relMetrics,
	}
	if version.HasPacketHeader() {
		c.window = rbpreliability.NewWindow(cfg.windowSize)
	}
	return c, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error { return c.transport.Close() }

// Tree returns the client's bound AddressTree.
func (c *Client) Tree() *addrtree.Tree { return c.tree }

// resolve looks up a dotted path and returns its node.
func (c *Client) resolve(path string) (*addrtree.Node, error) {
	h, err := addrtree.Resolve(c.tree, c.tree.Root(), path)
	if err != nil {
		return nil, err
	}
	return c.tree.Node(h), nil
}

// stage stages op, flushing once and retrying on ErrWouldBlock: on
// reject, the caller must flush and retry.
func (c *Client) stage(ctx context.Context, op rbpengine.Op) error {
	if err := c.engine.Stage(op); err == nil {
		return nil
	} else if err != rbptypes.ErrWouldBlock {
		return err
	}
	if c.txMetrics != nil {
		c.txMetrics.RecordWouldBlock()
	}
	if err := c.flush(ctx); err != nil {
		return err
	}
	return c.engine.Stage(op)
}

// Dispatch flushes all staged operations to the target and resolves
// their sinks. Read, Write and the RMW helpers already flush and wait
// internally; Dispatch is exported so a caller building on top of
// stage (via the lower-level Engine) can flush explicitly.
func (c *Client) Dispatch(ctx context.Context) error {
	return c.flush(ctx)
}

func (c *Client) flush(ctx context.Context) error {
	if c.engine.PendingCount() == 0 {
		return nil
	}

	sendWords := len(c.engine.SendWords())

	var packetHeader *uint32
	var counter uint16
	if c.window != nil {
		counter = c.window.NextCounter()
		h, err := c.codec.CalculatePacketHeader(rbptypes.Control, counter)
		if err != nil {
			return err
		}
		packetHeader = &h

		framed := make([]uint32, 0, sendWords+1)
		framed = append(framed, h)
		framed = append(framed, c.engine.SendWords()...)
		if err := c.window.Record(counter, framed); err != nil {
			return err
		}
		if c.relMetrics != nil {
			c.relMetrics.SetWindowOccupancy(c.window.Len())
		}
	}

	err := c.engine.Dispatch(ctx, c.transport, packetHeader)
	if c.txMetrics != nil {
		c.txMetrics.RecordDispatch(sendWords)
	}
	if err == nil {
		if c.window != nil {
			c.window.Ack(counter)
			if c.relMetrics != nil {
				c.relMetrics.SetWindowOccupancy(c.window.Len())
			}
		}
		return nil
	}

	if c.window == nil {
		// RBP 1.x has no reliability layer: abort on transport error.
		return err
	}

	return c.recover(ctx, err)
}

// recover runs the STATUS/RESEND recovery sequence for the oldest
// unacknowledged packet until it resolves or a fixed budget of three
// attempts is exhausted.
func (c *Client) recover(ctx context.Context, cause error) error {
	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		action, err := c.window.Reconcile(ctx, c.transport, c.codec, c.prober)
		if c.relMetrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			c.relMetrics.RecordStatusProbe(outcome)
			if action == rbpreliability.ActionResend {
				c.relMetrics.RecordResend()
			}
		}
		if err != nil {
			rbplog.WarnCtx(ctx, "reliability recovery failed", "session", c.sessionID, "attempt", attempt, "action", action, "err", err)
			return fmt.Errorf("rbpclient: recovery after %v: %w", cause, err)
		}
		reply, err := c.transport.Receive(ctx)
		if err != nil {
			continue
		}
		if len(reply) > 0 {
			reply = reply[1:] // strip the packet header
		}
		if verr := c.engine.Validate(reply); verr == nil {
			return nil
		}
	}
	if c.relMetrics != nil {
		c.relMetrics.RecordDesynchronized()
	}
	return fmt.Errorf("rbpclient: %w after %d recovery attempts (cause: %v)", rbptypes.ErrDesynchronized, maxAttempts, cause)
}
