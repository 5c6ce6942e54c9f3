// Package graphutil adapts a pts.Subgraph to the interfaces of existing
// graph libraries, so that analyses can reuse library traversals and
// component algorithms instead of reimplementing them per graph shape.
package graphutil

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"

	"github.com/zuxichen/dg/internal/maps"
	"github.com/zuxichen/dg/pts"
)

// SubgraphAdapter is an abstraction over a memory-flow subgraph that
// implements yourbasic/graph's graph.Iterator and Gonum's graph.Directed.
type SubgraphAdapter struct {
	// order is one past the largest node ID, so that dense vertex numbers
	// used by graph.Iterator coincide with node IDs.
	order int

	// Sub is the subgraph the adapter was constructed from.
	Sub *pts.Subgraph

	// IDMap maps node IDs to nodes.
	IDMap map[int64]*pts.Node

	// Keys holds all node IDs in increasing order.
	Keys []int64

	// Out and In are adjacency sets over node IDs. Edge references leaving
	// the node set are dropped; the validator reports those separately.
	Out map[int64]map[int64]bool
	In  map[int64]map[int64]bool
}

// NewSubgraphAdapter builds an adapter where vertex IDs correspond to the
// IDs of the subgraph's nodes.
func NewSubgraphAdapter(sg *pts.Subgraph) SubgraphAdapter {
	nodes := sg.Nodes()
	idmap := make(map[int64]*pts.Node, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		idmap[int64(n.ID())] = n
	}

	out := make(map[int64]map[int64]bool, len(idmap))
	in := make(map[int64]map[int64]bool, len(idmap))
	order := 0
	for id, n := range idmap {
		if int(id) >= order {
			order = int(id) + 1
		}
		if out[id] == nil {
			out[id] = map[int64]bool{}
		}
		for _, succ := range n.Successors() {
			sid := int64(succ.ID())
			if _, ok := idmap[sid]; !ok {
				continue
			}
			out[id][sid] = true
			if in[sid] == nil {
				in[sid] = map[int64]bool{}
			}
			in[sid][id] = true
		}
	}

	keys := maps.Keys(idmap)
	slices.Sort(keys)

	return SubgraphAdapter{
		order: order,
		Sub:   sg,
		IDMap: idmap,
		Keys:  keys,
		Out:   out,
		In:    in,
	}
}

// Order implements graph.Iterator.
func (a SubgraphAdapter) Order() int {
	return a.order
}

// Visit implements graph.Iterator. Vertex numbers with no corresponding
// node are silently empty.
func (a SubgraphAdapter) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for w := range a.Out[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Gonum graph.Directed implementation ***************

// Node implements the graph.Graph interface.
func (a SubgraphAdapter) Node(id int64) graph.Node {
	if n, ok := a.IDMap[id]; ok {
		return MNode{n}
	}
	return nil
}

// Nodes returns the node set of the graph in increasing ID order.
func (a SubgraphAdapter) Nodes() graph.Nodes {
	return newNodeSet(a.IDMap, slices.Clone(a.Keys))
}

// From returns the successors of the identified node.
func (a SubgraphAdapter) From(id int64) graph.Nodes {
	return newNodeSet(a.IDMap, sortedIDs(a.Out[id]))
}

// To returns the predecessors of the identified node.
func (a SubgraphAdapter) To(id int64) graph.Nodes {
	return newNodeSet(a.IDMap, sortedIDs(a.In[id]))
}

// HasEdgeBetween reports whether an edge exists between the two nodes,
// regardless of direction.
func (a SubgraphAdapter) HasEdgeBetween(xid, yid int64) bool {
	return a.Out[xid][yid] || a.Out[yid][xid]
}

// HasEdgeFromTo reports whether a directed edge u→v exists.
func (a SubgraphAdapter) HasEdgeFromTo(uid, vid int64) bool {
	return a.Out[uid][vid]
}

// Edge returns the directed edge u→v, or nil if none exists.
func (a SubgraphAdapter) Edge(uid, vid int64) graph.Edge {
	if a.Out[uid][vid] {
		return MEdge{from: MNode{a.IDMap[uid]}, to: MNode{a.IDMap[vid]}}
	}
	return nil
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := maps.Keys(set)
	slices.Sort(ids)
	return ids
}

// MNode wraps a *pts.Node to implement the graph.Node interface.
type MNode struct {
	N *pts.Node
}

func (n MNode) ID() int64 {
	return int64(n.N.ID())
}

func (n MNode) String() string {
	return n.N.String()
}

// nodeSet implements graph.Nodes, an iterator over a fixed set of nodes.
// The iterator starts before the first node; Next must be called before
// Node.
type nodeSet struct {
	nodes map[int64]*pts.Node
	ids   []int64
	cur   int
}

func newNodeSet(nodes map[int64]*pts.Node, ids []int64) *nodeSet {
	return &nodeSet{nodes: nodes, ids: ids, cur: -1}
}

func (ns *nodeSet) Next() bool {
	if ns.cur+1 < len(ns.ids) {
		ns.cur++
		return true
	}
	return false
}

func (ns *nodeSet) Len() int {
	return len(ns.ids) - ns.cur - 1
}

func (ns *nodeSet) Reset() {
	ns.cur = -1
}

func (ns *nodeSet) Node() graph.Node {
	return MNode{ns.nodes[ns.ids[ns.cur]]}
}

// MEdge implements the graph.Edge interface.
type MEdge struct {
	from, to MNode
}

func (e MEdge) From() graph.Node { return e.from }

func (e MEdge) To() graph.Node { return e.to }

func (e MEdge) ReversedEdge() graph.Edge { return MEdge{from: e.to, to: e.from} }
