package addrtree

import (
	"fmt"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/xmlnode"
)

func errNodeMustHaveUID(n xmlnode.Node) error {
	return fmt.Errorf("addrtree: %w (address=%q)", rbptypes.ErrNodeMustHaveUID, attrOrDash(n, "address"))
}

func errAmbiguousShape(n xmlnode.Node) error {
	id, _ := n.Attr("id")
	return fmt.Errorf("addrtree: node %q matches none of the plain/class/bitmask/module attribute shapes", id)
}

func attrOrDash(n xmlnode.Node, name string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return "-"
}
