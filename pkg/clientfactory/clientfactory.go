// Package clientfactory is the registered protocol-tag dispatcher
// (ipbusudp-1.3, ipbusudp-2.0, ipbustcp-1.3, chtcp-1.3): given a parsed
// URI it picks the matching transport and protocol version. A
// register-bus library with no way to turn a URI into a wired client
// would be untestable end-to-end, so this is a concrete registry
// rather than an interface-only sketch.
package clientfactory

import (
	"fmt"
	"sync"
	"time"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/pkg/rbptransport"
	"github.com/ast0815/ipbus-software/pkg/rbpuri"
)

// Dialer opens a Transport for the host/port named in u and reports
// the protocol version that tag implies.
type Dialer func(u rbpuri.URI, timeout time.Duration) (rbptransport.Transport, rbptypes.Version, error)

// Registry is a write-once-at-startup, read-only-thereafter map from
// protocol tag to Dialer.
type Registry struct {
	mu      sync.RWMutex
	dialers map[string]Dialer
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{dialers: make(map[string]Dialer)}
}

// Register adds a Dialer for protocol tag. Returns an error if tag is
// already registered.
func (r *Registry) Register(tag string, d Dialer) error {
	if tag == "" {
		return fmt.Errorf("clientfactory: cannot register empty protocol tag")
	}
	if d == nil {
		return fmt.Errorf("clientfactory: cannot register nil dialer for %q", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dialers[tag]; exists {
		return fmt.Errorf("clientfactory: protocol %q already registered", tag)
	}
	r.dialers[tag] = d
	return nil
}

// Dial resolves raw's protocol tag and dials the matching transport.
func (r *Registry) Dial(raw string, timeout time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
	u, err := rbpuri.Parse(raw)
	if err != nil {
		return nil, rbptypes.Version{}, err
	}

	r.mu.RLock()
	d, exists := r.dialers[u.Protocol]
	r.mu.RUnlock()

	if !exists {
		return nil, rbptypes.Version{}, fmt.Errorf("clientfactory: %w: %s", rbptypes.ErrUnknownProtocol, u.Protocol)
	}
	return d(u, timeout)
}

// List returns the registered protocol tags.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.dialers))
	for tag := range r.dialers {
		tags = append(tags, tag)
	}
	return tags
}

func hostPort(u rbpuri.URI) string {
	if u.Port == "" {
		return u.Host
	}
	return u.Host + ":" + u.Port
}

// NewDefault returns a Registry pre-populated with the protocol tags
//  names as examples.
func NewDefault() *Registry {
	r := New()
	must := func(tag string, d Dialer) {
		if err := r.Register(tag, d); err != nil {
			panic(err)
		}
	}

	must("ipbusudp-1.3", func(u rbpuri.URI, timeout time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
		tr, err := rbptransport.DialUDP(hostPort(u), timeout)
		return tr, rbptypes.Version{Major: 1, Minor: 3}, err
	})
	must("ipbusudp-2.0", func(u rbpuri.URI, timeout time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
		tr, err := rbptransport.DialUDP(hostPort(u), timeout)
		return tr, rbptypes.Version{Major: 2, Minor: 0}, err
	})
	must("ipbustcp-1.3", func(u rbpuri.URI, timeout time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
		tr, err := rbptransport.DialTCP(hostPort(u), timeout)
		return tr, rbptypes.Version{Major: 1, Minor: 3}, err
	})
	must("chtcp-1.3", func(u rbpuri.URI, timeout time.Duration) (rbptransport.Transport, rbptypes.Version, error) {
		tr, err := rbptransport.DialTCP(hostPort(u), timeout)
		return tr, rbptypes.Version{Major: 1, Minor: 3}, err
	})
	return r
}
