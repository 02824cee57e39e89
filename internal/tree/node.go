// Package tree holds the element tree built by the row mapper.
//
// A Node keeps its children in insertion order and, alongside, an index from
// tag name to the first child carrying that tag. Lookups are constant time
// while serialization still sees children in the order they were created.
package tree

// Node is a labeled element with optional text and ordered children.
type Node struct {
	tag      string
	text     string
	hasText  bool
	children []*Node
	index    map[string]*Node
}

// New returns a childless node with the given tag.
func New(tag string) *Node {
	return &Node{tag: tag}
}

// Tag returns the element name.
func (n *Node) Tag() string {
	return n.tag
}

// Text returns the node's text and whether text was ever set.
func (n *Node) Text() (string, bool) {
	return n.text, n.hasText
}

// SetText sets the node's text, replacing any previous value.
func (n *Node) SetText(text string) {
	n.text = text
	n.hasText = true
}

// Children returns the children in insertion order. The slice is owned by the
// node and must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the first child tagged tag, or nil.
func (n *Node) Child(tag string) *Node {
	if n.index == nil {
		return nil
	}
	return n.index[tag]
}

// Ensure returns the first child tagged tag, creating and appending it when
// no such child exists.
func (n *Node) Ensure(tag string) *Node {
	if child := n.Child(tag); child != nil {
		return child
	}
	child := New(tag)
	n.Append(child)
	return child
}

// Append adds child after the existing children. Siblings may share a tag
// (the document root holds one element per row); the index keeps pointing at
// the first of them so Child and Ensure stay first-match-wins.
func (n *Node) Append(child *Node) {
	n.children = append(n.children, child)
	if n.index == nil {
		n.index = make(map[string]*Node)
	}
	if _, ok := n.index[child.tag]; !ok {
		n.index[child.tag] = child
	}
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Count() int {
	total := 1
	for _, child := range n.children {
		total += child.Count()
	}
	return total
}

// Walk calls fn for every node of the subtree in document order. depth is 0
// for n itself.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int), depth int) {
	fn(n, depth)
	for _, child := range n.children {
		child.walk(fn, depth+1)
	}
}
