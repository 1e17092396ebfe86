package addrtree

import "fmt"

// Resolve looks up dottedPath under root's precomputed ChildrenMap,
// O(1) average. An empty path resolves to root
// itself.
func Resolve(t *Tree, root Handle, dottedPath string) (Handle, error) {
	if dottedPath == "" {
		return root, nil
	}
	n := t.Node(root)
	h, ok := n.ChildrenMap[dottedPath]
	if !ok {
		return invalidHandle, fmt.Errorf("addrtree: no node at path %q under %q", dottedPath, n.UID)
	}
	return h, nil
}
