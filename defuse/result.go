package defuse

import (
	"fmt"

	"github.com/zuxichen/dg/pts"
)

// Dep is one data-dependence fact: Use reads the memory object Obj whose
// definition at Def may still be visible.
type Dep struct {
	Use *pts.Node
	Def *pts.Node
	Obj *pts.Node
}

func (d Dep) String() string {
	return fmt.Sprintf("%v depends on %v for %v", d.Use, d.Def, d.Obj)
}

// Result holds the outcome of Analyze. The same dependence facts are also
// attached to the using nodes (see pts.Node.DataDependencies); downstream
// slicing consumes either view.
type Result struct {
	// Deps lists every dependence edge in deterministic order: using nodes
	// in creation order, definitions in creation order within each.
	Deps []Dep

	reaching map[*pts.Node][]*pts.Node
}

// ReachingDefinitions returns the definition nodes whose effect may still
// be visible immediately before n, in increasing ID order.
func (r *Result) ReachingDefinitions(n *pts.Node) []*pts.Node {
	return r.reaching[n]
}

func (ctx *aContext) result(deps []Dep) *Result {
	reaching := make(map[*pts.Node][]*pts.Node, len(ctx.states))
	for n, st := range ctx.states {
		ids := st.in.AppendTo(nil)
		if len(ids) == 0 {
			continue
		}
		nodes := make([]*pts.Node, len(ids))
		for i, id := range ids {
			nodes[i] = ctx.byID[id]
		}
		reaching[n] = nodes
	}

	return &Result{Deps: deps, reaching: reaching}
}
