// Package pts defines the in-memory shape of a pointer/memory-operation
// graph: nodes tagged with a closed set of operation kinds, the subgraph
// container that owns them, and a structural validator that proves the
// graph's well-formedness invariants.
//
// The package models the graph, it does not solve points-to constraints;
// a solver produces and consumes graphs of this shape through the public
// API only.
package pts

// Subgraph is the sole owner of the nodes of a memory-flow graph. It holds a
// distinguished root node and three sentinel identities (null address,
// unknown memory, invalidated memory) that may appear as operands without
// being members of the node set.
type Subgraph struct {
	root  *Node
	nodes []*Node

	nullAddr    *Node
	unknownMem  *Node
	invalidated *Node

	nextID int
}

// New returns an empty subgraph with the three sentinel nodes reserved.
func New() *Subgraph {
	sg := &Subgraph{nextID: 1}
	sg.nullAddr = sg.sentinel(NullAddr)
	sg.unknownMem = sg.sentinel(UnknownMem)
	sg.invalidated = sg.sentinel(InvalidateObject)
	return sg
}

func (sg *Subgraph) sentinel(kind NodeKind) *Node {
	n := &Node{id: sg.nextID, kind: kind}
	sg.nextID++
	return n
}

// NewNode allocates a node with a fresh ID, registers it in the owned node
// set and returns it. Operand references are stored in order; they are not
// owned by the node.
func (sg *Subgraph) NewNode(kind NodeKind, operands ...*Node) *Node {
	n := &Node{id: sg.nextID, kind: kind, operands: operands}
	sg.nextID++
	sg.nodes = append(sg.nodes, n)
	return n
}

// SetRoot marks n as the entry node of the graph.
func (sg *Subgraph) SetRoot(n *Node) { sg.root = n }

// Root returns the entry node of the graph, or nil before SetRoot.
func (sg *Subgraph) Root() *Node { return sg.root }

// Nodes returns the complete owned node set. Iteration order is stable
// (creation order, which coincides with increasing IDs) but carries no
// semantic meaning. The returned slice must not be mutated.
func (sg *Subgraph) Nodes() []*Node { return sg.nodes }

// Size returns the number of owned nodes, excluding sentinels.
func (sg *Subgraph) Size() int { return len(sg.nodes) }

// GetNode returns the owned node with the given ID, or nil.
func (sg *Subgraph) GetNode(id int) *Node {
	for _, n := range sg.nodes {
		if n != nil && n.id == id {
			return n
		}
	}
	return nil
}

// NullAddress returns the sentinel denoting a pointer to nothing.
func (sg *Subgraph) NullAddress() *Node { return sg.nullAddr }

// UnknownMemory returns the sentinel denoting externally created or
// otherwise unmodeled memory.
func (sg *Subgraph) UnknownMemory() *Node { return sg.unknownMem }

// InvalidatedMemory returns the sentinel denoting a freed region.
func (sg *Subgraph) InvalidatedMemory() *Node { return sg.invalidated }

// IsSentinel reports whether n is one of the three reserved identities of
// this subgraph.
func (sg *Subgraph) IsSentinel(n *Node) bool {
	return n == sg.nullAddr || n == sg.unknownMem || n == sg.invalidated
}
