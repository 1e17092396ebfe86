// Package xmlnode is the thin adapter between an address-map XML
// document and the attributed-node-tree shape internal/addrtree
// consumes, replacing the source's direct pugi::xml_node walking
// (NodeTreeBuilder.cpp) with a decode into a plain Go value.
package xmlnode

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Node is one <node> element: its attributes (order-preserving, since
// the "class" attribute's argument list is itself an ordered k/v list)
// and its <node> children, in document order.
type Node struct {
	XMLName  xml.Name   `xml:"node"`
	RawAttrs []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:"node"`
}

// Attr returns the value of the named attribute and whether it was
// present at all (an empty string and an absent attribute are
// distinguished, since e.g. size="0" is meaningfully different from no
// size attribute).
func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.RawAttrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAny reports whether any of names is present on n.
func (n Node) HasAny(names ...string) bool {
	for _, name := range names {
		if _, ok := n.Attr(name); ok {
			return true
		}
	}
	return false
}

// Parse decodes an address-map document from r. The root element must
// be a <node>, mirroring the source's
// `lXmlDocument.child("node")` lookup.
func Parse(r io.Reader) (Node, error) {
	var n Node
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&n); err != nil {
		return Node{}, fmt.Errorf("xmlnode: decode: %w", err)
	}
	if n.XMLName.Local != "node" {
		return Node{}, fmt.Errorf("xmlnode: root element is %q, expected \"node\"", n.XMLName.Local)
	}
	return n, nil
}
