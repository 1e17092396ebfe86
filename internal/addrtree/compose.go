package addrtree

import (
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbplog"
	"github.com/ast0815/ipbus-software/internal/rbptypes"
)

// AssignAddresses composes partial addresses into absolute ones,
// recursing from root with the given inherited address bits.
func AssignAddresses(t *Tree, root Handle, inherited uint32) error {
	n := t.Node(root)

	if n.Mode == Hierarchical && (len(n.Children) == 0 || allChildrenMaskOnly(t, n.Children)) {
		n.Mode = Single
	}

	if n.Mode == Incremental {
		top := uint64(n.PartialAddr) + uint64(n.Size) - 1
		if top>>32 != 0 {
			return fmt.Errorf("addrtree: node %q: %w", n.UID, rbptypes.ErrArraySizeExceedsRegisterBound)
		}
	}

	if n.PartialAddr&inherited != 0 {
		rbplog.Warn("address overlaps ancestor bits", "uid", n.UID,
			"partial_addr", n.PartialAddr, "inherited", inherited)
	}

	n.Addr = n.PartialAddr | inherited
	for _, child := range n.Children {
		if err := AssignAddresses(t, child, n.Addr); err != nil {
			return err
		}
	}
	return nil
}

func allChildrenMaskOnly(t *Tree, children []Handle) bool {
	for _, h := range children {
		if !t.Node(h).IsBitmask() {
			return false
		}
	}
	return true
}

// buildChildrenMaps populates every node's ChildrenMap with its full
// set of descendants, keyed by dotted path relative to that node. It
// runs post-order so a parent's map can be built by splicing each
// child's own (already-built) map under "child.uid.".
func buildChildrenMaps(t *Tree, root Handle) {
	n := t.Node(root)
	m := make(map[string]Handle, len(n.Children))
	for _, child := range n.Children {
		buildChildrenMaps(t, child)
		childNode := t.Node(child)
		m[childNode.UID] = child
		for path, h := range childNode.ChildrenMap {
			m[childNode.UID+"."+path] = h
		}
	}
	n.ChildrenMap = m
}
