package addrtree

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ast0815/ipbus-software/internal/xmlnode"
)

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func node(attrs []xml.Attr, children ...xmlnode.Node) xmlnode.Node {
	return xmlnode.Node{
		XMLName:  xml.Name{Local: "node"},
		RawAttrs: attrs,
		Children: children,
	}
}

func TestAssignAddresses_InheritsParentBits(t *testing.T) {
	doc := node(nil,
		node([]xml.Attr{attr("id", "a"), attr("address", "0x10")},
			node([]xml.Attr{attr("id", "b"), attr("address", "0x1")}),
		),
	)

	b := NewBuilder(nil, nil, Policy{})
	tree, err := b.Build(doc)
	require.NoError(t, err)

	a, err := Resolve(tree, tree.Root(), "a")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10), tree.Node(a).Addr)

	bNode, err := Resolve(tree, tree.Root(), "a.b")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x11), tree.Node(bNode).Addr)
}

func TestAssignAddresses_HierarchicalWithNoChildrenDemotesToSingle(t *testing.T) {
	doc := node(nil, node([]xml.Attr{attr("id", "leaf"), attr("address", "0x4")}))

	b := NewBuilder(nil, nil, Policy{})
	tree, err := b.Build(doc)
	require.NoError(t, err)

	h, err := Resolve(tree, tree.Root(), "leaf")
	require.NoError(t, err)
	assert.Equal(t, Single, tree.Node(h).Mode)
}

func TestAssignAddresses_HierarchicalWithOnlyMaskedChildrenDemotesToSingle(t *testing.T) {
	doc := node(nil,
		node([]xml.Attr{attr("id", "ctrl"), attr("address", "0x4")},
			node([]xml.Attr{attr("id", "enable"), attr("mask", "0x1")}),
		),
	)

	b := NewBuilder(nil, nil, Policy{})
	tree, err := b.Build(doc)
	require.NoError(t, err)

	h, err := Resolve(tree, tree.Root(), "ctrl")
	require.NoError(t, err)
	assert.Equal(t, Single, tree.Node(h).Mode)
}

func TestAssignAddresses_IncrementalOverflow(t *testing.T) {
	doc := node(nil,
		node([]xml.Attr{
			attr("id", "block"),
			attr("address", "0xFFFFFFF0"),
			attr("mode", "incremental"),
			attr("size", "0x20"),
		}),
	)

	b := NewBuilder(nil, nil, Policy{})
	_, err := b.Build(doc)
	require.Error(t, err)
}

// TestScenario_AddressCollision covers two sibling INCREMENTAL nodes,
// [0x100,0x10F] and [0x108,0x110], that collide.
func TestScenario_AddressCollision(t *testing.T) {
	doc := node(nil,
		node([]xml.Attr{
			attr("id", "a"), attr("address", "0x100"),
			attr("mode", "incremental"), attr("size", "0x10"),
		}),
		node([]xml.Attr{
			attr("id", "b"), attr("address", "0x108"),
			attr("mode", "incremental"), attr("size", "0x9"),
		}),
	)

	strict := NewBuilder(nil, nil, Policy{ThrowOnOverlap: true})
	_, err := strict.Build(doc)
	require.Error(t, err)

	lenient := NewBuilder(nil, nil, Policy{ThrowOnOverlap: false})
	_, err = lenient.Build(doc)
	require.NoError(t, err)
}

func TestCheckCollisions_SiblingsWithOverlappingMasksCollide(t *testing.T) {
	doc := node(nil,
		node([]xml.Attr{attr("id", "a"), attr("address", "0x4"), attr("mask", "0x3")}),
		node([]xml.Attr{attr("id", "b"), attr("address", "0x4"), attr("mask", "0x1")}),
	)

	b := NewBuilder(nil, nil, Policy{ThrowOnOverlap: true})
	_, err := b.Build(doc)
	require.Error(t, err)
}

func TestCheckCollisions_BitmaskChildrenOfSameParentNeverSiblingCompared(t *testing.T) {
	// enable/mode are children of ctrl, not siblings of each other's
	// parent's other children, so the pairwise sibling check never
	// compares ctrl against either of them.
	doc := node(nil,
		node([]xml.Attr{attr("id", "ctrl"), attr("address", "0x4")},
			node([]xml.Attr{attr("id", "enable"), attr("mask", "0x1")}),
			node([]xml.Attr{attr("id", "mode"), attr("mask", "0x6")}),
		),
	)

	b := NewBuilder(nil, nil, Policy{ThrowOnOverlap: true})
	_, err := b.Build(doc)
	require.NoError(t, err)
}

// TestBuilder_Idempotent checks the builder's idempotency: building
// twice from the same input yields trees whose flattened maps are
// equal.
func TestBuilder_Idempotent(t *testing.T) {
	doc := node(nil,
		node([]xml.Attr{attr("id", "a"), attr("address", "0x10")},
			node([]xml.Attr{attr("id", "b"), attr("address", "0x1")}),
		),
	)

	b := NewBuilder(nil, nil, Policy{})
	t1, err := b.Build(doc)
	require.NoError(t, err)
	t2, err := b.Build(doc)
	require.NoError(t, err)

	flatten := func(tree *Tree) map[string]uint32 {
		out := make(map[string]uint32)
		for path, h := range tree.Node(tree.Root()).ChildrenMap {
			out[path] = tree.Node(h).Addr
		}
		return out
	}
	assert.Equal(t, flatten(t1), flatten(t2))
}

func TestBuilder_IncrementalRequiresSize(t *testing.T) {
	doc := node(nil, node([]xml.Attr{attr("id", "a"), attr("mode", "incremental")}))
	b := NewBuilder(nil, nil, Policy{})
	_, err := b.Build(doc)
	require.Error(t, err)
}

func TestBuilder_MaskedNodeCannotHaveChildren(t *testing.T) {
	doc := node(nil,
		node([]xml.Attr{attr("id", "a"), attr("mask", "0x1")},
			node([]xml.Attr{attr("id", "b")}),
		),
	)
	b := NewBuilder(nil, nil, Policy{})
	_, err := b.Build(doc)
	require.Error(t, err)
}

type fakeClassFactory struct{}

func (fakeClassFactory) Create(label string, args []KeyValue) (xmlnode.Node, error) {
	return node([]xml.Attr{attr("address", "0x8")}), nil
}

func TestBuilder_ClassNodeMergesTemplate(t *testing.T) {
	doc := node(nil, node([]xml.Attr{attr("id", "a"), attr("class", "Counter(width=32)")}))

	b := NewBuilder(fakeClassFactory{}, nil, Policy{})
	tree, err := b.Build(doc)
	require.NoError(t, err)

	h, err := Resolve(tree, tree.Root(), "a")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x8), tree.Node(h).Addr)
}

func TestBuilder_ModuleNodeGraftsUnderOwnID(t *testing.T) {
	loader := func(path string) (xmlnode.Node, error) {
		return node([]xml.Attr{attr("address", "0x100")},
			node([]xml.Attr{attr("id", "sub"), attr("address", "0x1")}),
		), nil
	}

	doc := node(nil, node([]xml.Attr{attr("id", "dev"), attr("module", "dev.xml")}))
	b := NewBuilder(nil, loader, Policy{})
	tree, err := b.Build(doc)
	require.NoError(t, err)

	h, err := Resolve(tree, tree.Root(), "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", tree.Node(h).UID)

	sub, err := Resolve(tree, tree.Root(), "dev.sub")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x101), tree.Node(sub).Addr)
}
