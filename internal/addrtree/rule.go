package addrtree

import "github.com/ast0815/ipbus-software/internal/xmlnode"

// attrRule is a chainable require/forbid matcher over a node's
// attribute set, ported from NodeTreeBuilder.cpp's Rule<Node*>
// (.require/.forbid/.optional fluent builder). Optional is documentation
// only: Go has no operator overload to make "allowed but unchecked"
// distinguishable from "unmentioned", so Optional attributes simply
// aren't checked either way.
type attrRule struct {
	required []string
	forbidden []string
}

func newRule() *attrRule { return &attrRule{} }

func (r *attrRule) Require(attr string) *attrRule {
	r.required = append(r.required, attr)
	return r
}

func (r *attrRule) Forbid(attr string) *attrRule {
	r.forbidden = append(r.forbidden, attr)
	return r
}

// Optional is a no-op kept for parity with the matcher tables read
// alongside NodeTreeBuilder.cpp's rule construction.
func (r *attrRule) Optional(string) *attrRule { return r }

func (r *attrRule) Matches(n xmlnode.Node) bool {
	for _, a := range r.required {
		if _, ok := n.Attr(a); !ok {
			return false
		}
	}
	for _, a := range r.forbidden {
		if _, ok := n.Attr(a); ok {
			return false
		}
	}
	return true
}

// shape is one of the four node-shapes 's table recognizes.
type shape int

const (
	shapePlain shape = iota
	shapeClass
	shapeBitmask
	shapeModule
)

var (
	moduleRule = newRule().Require("id").Require("module").
		Forbid("mask").Forbid("class").Forbid("mode").Forbid("size").Forbid("permission")
	classRule = newRule().Require("class").Forbid("mask").Forbid("module")
	bitmaskRule = newRule().Require("mask").Forbid("class").Forbid("module").Forbid("mode").Forbid("size")
	plainRule = newRule().Forbid("class").Forbid("module").Forbid("mask")
)

// classify determines n's shape. topLevel relaxes the plain shape's
// otherwise-required id attribute, mirroring NodeTreeBuilder's
// aRequireId parameter.
func classify(n xmlnode.Node, topLevel bool) (shape, error) {
	switch {
	case moduleRule.Matches(n):
		return shapeModule, nil
	case classRule.Matches(n):
		return shapeClass, nil
	case bitmaskRule.Matches(n):
		return shapeBitmask, nil
	case plainRule.Matches(n):
		if !topLevel {
			if _, ok := n.Attr("id"); !ok {
				return shapePlain, errNodeMustHaveUID(n)
			}
		}
		return shapePlain, nil
	default:
		return shapePlain, errAmbiguousShape(n)
	}
}
