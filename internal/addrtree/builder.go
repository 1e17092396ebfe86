package addrtree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ast0815/ipbus-software/internal/rbptypes"
	"github.com/ast0815/ipbus-software/internal/xmlnode"
)

// KeyValue is one ordered (key, value) pair from a class attribute's
// argument list — ordered rather than a map because a custom node
// constructor may depend on argument position as well as key.
type KeyValue struct {
	Key, Value string
}

// ClassFactory instantiates the node subtype named by a "class"
// attribute. It returns a template node whose attributes and children
// are merged under the instantiating node.
type ClassFactory interface {
	Create(label string, args []KeyValue) (xmlnode.Node, error)
}

// FileLoader loads the address-map document referenced by a "module"
// attribute's path, for grafting under the instantiating node's id.
type FileLoader func(path string) (xmlnode.Node, error)

// Policy controls runtime-gated validation behavior, resolving the
// source's compile-time THROW_ON_ADDRESS_SPACE_OVERLAP flag into a
// runtime field instead.
type Policy struct {
	ThrowOnOverlap bool
}

// Builder constructs a Tree from an xmlnode.Node document.
type Builder struct {
	Classes ClassFactory
	Files   FileLoader
	Policy  Policy
}

// NewBuilder returns a Builder. classes and files may be nil if the
// address map under construction never uses class or module nodes;
// attempting to use one without a collaborator configured is
// reported as an error from Build rather than silently no-opping.
func NewBuilder(classes ClassFactory, files FileLoader, policy Policy) *Builder {
	return &Builder{Classes: classes, Files: files, Policy: policy}
}

// Build parses root into a fully composed, collision-checked Tree:
// parse shapes, assign addresses, build the lookup index, then check
// for collisions.
func (b *Builder) Build(root xmlnode.Node) (*Tree, error) {
	t := newTree()
	h, err := b.buildNode(t, root, true, invalidHandle, "", "")
	if err != nil {
		return nil, err
	}
	if err := AssignAddresses(t, h, 0); err != nil {
		return nil, err
	}
	buildChildrenMaps(t, h)
	if err := CheckCollisions(t, h, b.Policy); err != nil {
		return nil, err
	}
	t.root = h
	return t, nil
}

func (b *Builder) buildNode(t *Tree, xn xmlnode.Node, topLevel bool, parent Handle, outerTags, outerDesc string) (Handle, error) {
	sh, err := classify(xn, topLevel)
	if err != nil {
		return invalidHandle, err
	}

	switch sh {
	case shapeModule:
		return b.buildModuleNode(t, xn, parent, outerTags, outerDesc)
	case shapeClass:
		merged, err := b.mergeClassTemplate(xn)
		if err != nil {
			return invalidHandle, err
		}
		return b.buildPlainOrBitmask(t, merged, topLevel, parent, outerTags, outerDesc)
	default:
		return b.buildPlainOrBitmask(t, xn, topLevel, parent, outerTags, outerDesc)
	}
}

// buildPlainOrBitmask handles the plain and bitmask shapes, which
// share identical field parsing and only differ in whether children
// are permitted (bitmask and non-incremental nodes forbid them).
func (b *Builder) buildPlainOrBitmask(t *Tree, xn xmlnode.Node, topLevel bool, parent Handle, outerTags, outerDesc string) (Handle, error) {
	uid, _ := xn.Attr("id")

	partial, err := parseAddress(xn)
	if err != nil {
		return invalidHandle, err
	}

	mask := NoMask
	if raw, ok := xn.Attr("mask"); ok {
		m, err := parseUint32(raw)
		if err != nil {
			return invalidHandle, fmt.Errorf("addrtree: node %q: bad mask: %w", uid, err)
		}
		mask = m
	}

	mode := Hierarchical
	if raw, ok := xn.Attr("mode"); ok {
		m, ok := parseMode(raw)
		if !ok {
			return invalidHandle, fmt.Errorf("addrtree: node %q: unrecognized mode %q", uid, raw)
		}
		mode = m
	}

	var size uint32
	if raw, ok := xn.Attr("size"); ok {
		s, err := parseUint32(raw)
		if err != nil {
			return invalidHandle, fmt.Errorf("addrtree: node %q: bad size: %w", uid, err)
		}
		size = s
	}
	if mode == Incremental && size == 0 {
		return invalidHandle, fmt.Errorf("addrtree: node %q: %w", uid, rbptypes.ErrIncrementalNodeRequiresSize)
	}

	perm := NoPermission
	if raw, ok := xn.Attr("permission"); ok {
		p, ok := parsePermission(raw)
		if !ok {
			return invalidHandle, fmt.Errorf("addrtree: node %q: unrecognized permission %q", uid, raw)
		}
		perm = p
	}

	tags, _ := xn.Attr("tags")
	desc, _ := xn.Attr("description")
	tags = combineText(outerTags, tags)
	desc = combineText(outerDesc, desc)

	hasMask := mask != NoMask
	if hasMask && len(xn.Children) > 0 {
		return invalidHandle, fmt.Errorf("addrtree: node %q: %w", uid, rbptypes.ErrMaskedNodeCannotHaveChild)
	}
	if mode == NonIncremental && len(xn.Children) > 0 {
		return invalidHandle, fmt.Errorf("addrtree: node %q: %w", uid, rbptypes.ErrBlockAccessNodeCannotHaveChild)
	}

	h := t.alloc(Node{
		UID:         uid,
		Parent:      parent,
		PartialAddr: partial,
		Mode:        mode,
		Size:        size,
		Permissions: perm,
		Mask:        mask,
		Tags:        tags,
		Description: desc,
	})

	for _, childXML := range xn.Children {
		childHandle, err := b.buildNode(t, childXML, false, h, tags, desc)
		if err != nil {
			return invalidHandle, err
		}
		t.Node(h).Children = append(t.Node(h).Children, childHandle)
	}
	return h, nil
}

func (b *Builder) buildModuleNode(t *Tree, xn xmlnode.Node, parent Handle, outerTags, outerDesc string) (Handle, error) {
	if b.Files == nil {
		return invalidHandle, fmt.Errorf("addrtree: node uses module= but no FileLoader is configured")
	}
	path, _ := xn.Attr("module")
	loaded, err := b.Files(path)
	if err != nil {
		return invalidHandle, fmt.Errorf("addrtree: %w: %s: %v", rbptypes.ErrFailedToOpenAddressTableFile, path, err)
	}

	uid, _ := xn.Attr("id")
	tags, _ := xn.Attr("tags")
	desc, _ := xn.Attr("description")
	tags = combineText(outerTags, tags)
	desc = combineText(outerDesc, desc)

	root, err := b.buildNode(t, loaded, true, parent, tags, desc)
	if err != nil {
		return invalidHandle, fmt.Errorf("addrtree: grafting module %q: %w", path, err)
	}
	// Graft under the instantiating node's own id
	t.Node(root).UID = uid
	return root, nil
}

// mergeClassTemplate resolves a class-shape node's ClassFactory
// template, producing a merged xmlnode.Node: the instantiating node's
// own attributes override the template's, and the template's children
// precede the instance's own (NodeTreeBuilder.cpp's
// classNodeCreator → addChildren).
func (b *Builder) mergeClassTemplate(xn xmlnode.Node) (xmlnode.Node, error) {
	if b.Classes == nil {
		return xmlnode.Node{}, fmt.Errorf("addrtree: node uses class= but no ClassFactory is configured")
	}
	rawClass, _ := xn.Attr("class")
	label, args := parseClassSpec(rawClass)

	template, err := b.Classes.Create(label, args)
	if err != nil {
		return xmlnode.Node{}, fmt.Errorf("addrtree: %w: %s", rbptypes.ErrLabelUnknownToClassFactory, label)
	}

	merged := xmlnode.Node{XMLName: xn.XMLName}
	seen := make(map[string]bool, len(xn.RawAttrs))
	for _, a := range xn.RawAttrs {
		if a.Name.Local == "class" {
			continue
		}
		merged.RawAttrs = append(merged.RawAttrs, a)
		seen[a.Name.Local] = true
	}
	for _, a := range template.RawAttrs {
		if !seen[a.Name.Local] {
			merged.RawAttrs = append(merged.RawAttrs, a)
		}
	}
	merged.Children = append(merged.Children, template.Children...)
	merged.Children = append(merged.Children, xn.Children...)
	return merged, nil
}

// parseClassSpec splits a class attribute value of the form
// "Label(k1=v1,k2=v2)" into its label and ordered argument list. A
// bare label with no parenthesized argument list is legal and yields
// an empty args slice.
func parseClassSpec(raw string) (label string, args []KeyValue) {
	open := strings.IndexByte(raw, '(')
	if open == -1 {
		return strings.TrimSpace(raw), nil
	}
	label = strings.TrimSpace(raw[:open])
	inner := strings.TrimSuffix(raw[open+1:], ")")
	if strings.TrimSpace(inner) == "" {
		return label, nil
	}
	for _, pair := range strings.Split(inner, ",") {
		k, v, _ := strings.Cut(pair, "=")
		args = append(args, KeyValue{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
	}
	return label, args
}

func parseAddress(xn xmlnode.Node) (uint32, error) {
	raw, ok := xn.Attr("address")
	if !ok {
		return 0, nil
	}
	v, err := parseUint32(raw)
	if err != nil {
		id, _ := xn.Attr("id")
		return 0, fmt.Errorf("addrtree: node %q: bad address: %w", id, err)
	}
	return v, nil
}

func parseUint32(raw string) (uint32, error) {
	raw = strings.TrimSpace(raw)
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func combineText(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	default:
		return outer + "[" + inner + "]"
	}
}
