package models

import "sort"

// TagNode is a node of the tag prefix tree. The root represents the empty prefix.
type TagNode struct {
	Name     string              `json:"name"`
	Children map[string]*TagNode `json:"children"`
}

// NewTagNode returns an empty node.
func NewTagNode(name string) *TagNode {
	return &TagNode{Name: name, Children: make(map[string]*TagNode)}
}

// NewTagTree returns an empty root node.
func NewTagTree() *TagNode {
	return NewTagNode("root")
}

// Insert adds every segment of path as one edge below n.
func (n *TagNode) Insert(path TagPath) {
	node := n
	for _, seg := range path {
		if node.Children == nil {
			node.Children = make(map[string]*TagNode)
		}
		child, ok := node.Children[seg]
		if !ok {
			child = NewTagNode(seg)
			node.Children[seg] = child
		}
		node = child
	}
}

// ChildNames returns the child segment names in lexicographic order.
func (n *TagNode) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns the named child, or nil.
func (n *TagNode) Child(name string) *TagNode {
	return n.Children[name]
}

// Lookup follows path from n and returns the node it ends at, or nil.
func (n *TagNode) Lookup(path TagPath) *TagNode {
	node := n
	for _, seg := range path {
		node = node.Child(seg)
		if node == nil {
			return nil
		}
	}
	return node
}

// Paths lists every tag path in the tree (each node, not only leaves),
// depth-first in lexicographic order.
func (n *TagNode) Paths() []TagPath {
	var out []TagPath
	var walk func(node *TagNode, prefix TagPath)
	walk = func(node *TagNode, prefix TagPath) {
		for _, name := range node.ChildNames() {
			p := append(prefix[:len(prefix):len(prefix)], name)
			out = append(out, p)
			walk(node.Children[name], p)
		}
	}
	walk(n, nil)
	return out
}

// IsEmpty reports whether the tree has no tags.
func (n *TagNode) IsEmpty() bool {
	return len(n.Children) == 0
}
