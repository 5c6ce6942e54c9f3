package graphutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ybgraph "github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/zuxichen/dg/internal/graphutil"
	"github.com/zuxichen/dg/pts"
)

func buildDiamond() (*pts.Subgraph, [4]*pts.Node) {
	sg := pts.New()
	root := sg.NewNode(pts.Noop)
	a := sg.NewNode(pts.Noop)
	b := sg.NewNode(pts.Noop)
	join := sg.NewNode(pts.Noop)
	root.AddSuccessor(a)
	root.AddSuccessor(b)
	a.AddSuccessor(join)
	b.AddSuccessor(join)
	sg.SetRoot(root)
	return sg, [4]*pts.Node{root, a, b, join}
}

func TestAdapterIterator(t *testing.T) {
	sg, ns := buildDiamond()
	ad := graphutil.NewSubgraphAdapter(sg)

	assert.Greater(t, ad.Order(), ns[3].ID())

	// The adapter satisfies yourbasic's Iterator: BFS from the root must
	// visit every node exactly once.
	visited := map[int]bool{ns[0].ID(): true}
	ybgraph.BFS(ad, ns[0].ID(), func(_, w int, _ int64) {
		assert.False(t, visited[w], "node %d visited twice", w)
		visited[w] = true
	})
	assert.Len(t, visited, 4)
}

func TestAdapterDirected(t *testing.T) {
	sg, ns := buildDiamond()
	ad := graphutil.NewSubgraphAdapter(sg)

	var _ graph.Directed = ad

	root, a, join := int64(ns[0].ID()), int64(ns[1].ID()), int64(ns[3].ID())

	assert.True(t, ad.HasEdgeFromTo(root, a))
	assert.False(t, ad.HasEdgeFromTo(a, root))
	assert.True(t, ad.HasEdgeBetween(a, root))
	assert.False(t, ad.HasEdgeBetween(root, join))

	require.NotNil(t, ad.Edge(root, a))
	assert.Nil(t, ad.Edge(a, root))
	assert.Equal(t, root, ad.Edge(root, a).ReversedEdge().To().ID())

	assert.Equal(t, 4, ad.Nodes().Len())
	require.NotNil(t, ad.Node(root))
	assert.Nil(t, ad.Node(100000))

	from := graph.NodesOf(ad.From(root))
	require.Len(t, from, 2)
	to := graph.NodesOf(ad.To(join))
	require.Len(t, to, 2)
}

func TestAdapterTarjanSCC(t *testing.T) {
	// root → a ⇄ b → tail: the loop forms one component of size two.
	sg := pts.New()
	root := sg.NewNode(pts.Noop)
	a := sg.NewNode(pts.Noop)
	b := sg.NewNode(pts.Noop)
	tail := sg.NewNode(pts.Noop)
	root.AddSuccessor(a)
	a.AddSuccessor(b)
	b.AddSuccessor(a)
	b.AddSuccessor(tail)
	sg.SetRoot(root)

	ad := graphutil.NewSubgraphAdapter(sg)
	sccs := topo.TarjanSCC(ad)
	require.Len(t, sccs, 3)

	sizes := make([]int, len(sccs))
	for i, scc := range sccs {
		sizes[i] = len(scc)
	}
	assert.ElementsMatch(t, []int{1, 1, 2}, sizes)

	// Reverse topological order: the tail component first, the root last.
	assert.Equal(t, int64(tail.ID()), sccs[0][0].ID())
	assert.Equal(t, int64(root.ID()), sccs[len(sccs)-1][0].ID())
}
