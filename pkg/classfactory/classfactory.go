// Package classfactory is the node-class registry for custom address
// table node types: a string-keyed registry of constructors for the
// "class" attribute's custom node subtypes, grounded in a write-once /
// read-dominant registration discipline.
package classfactory

import (
	"fmt"
	"sync"

	"github.com/ast0815/ipbus-software/internal/addrtree"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/xmlnode"
)

// Creator builds the template node a class label instantiates. args is
// the ordered (key, value) list parsed out of the class attribute's
// parenthesized argument list.
type Creator func(args []addrtree.KeyValue) (xmlnode.Node, error)

// Registry is a keyed set of class Creators. It implements
// addrtree.ClassFactory.
type Registry struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{creators: make(map[string]Creator)}
}

// Register adds a named Creator. Returns an error if name is already
// registered — class labels are expected to be registered once, at
// process startup.
func (r *Registry) Register(name string, c Creator) error {
	if name == "" {
		return fmt.Errorf("classfactory: cannot register empty class name")
	}
	if c == nil {
		return fmt.Errorf("classfactory: cannot register nil creator for %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.creators[name]; exists {
		return fmt.Errorf("classfactory: class %q already registered", name)
	}
	r.creators[name] = c
	return nil
}

// Create instantiates the node subtype named label, satisfying
// addrtree.ClassFactory.
func (r *Registry) Create(label string, args []addrtree.KeyValue) (xmlnode.Node, error) {
	r.mu.RLock()
	c, exists := r.creators[label]
	r.mu.RUnlock()

	if !exists {
		return xmlnode.Node{}, fmt.Errorf("classfactory: %w: %s", rbptypes.ErrLabelUnknownToClassFactory, label)
	}
	return c(args)
}

// List returns the registered class names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.creators))
	for name := range r.creators {
		names = append(names, name)
	}
	return names
}

var _ addrtree.ClassFactory = (*Registry)(nil)
