// Package defuse links every memory-reading node of a pointer subgraph to
// the definitions of the memory it may read. It instantiates the generic
// fixed-point engine with a reaching-definitions transfer function and then
// attaches one data-dependence edge per (definition, object) pair, using an
// externally supplied points-to answer to resolve pointer operands to
// abstract memory objects.
package defuse

import (
	"golang.org/x/exp/slices"
	"golang.org/x/tools/container/intsets"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/zuxichen/dg/config"
	"github.com/zuxichen/dg/dataflow"
	"github.com/zuxichen/dg/internal/graphutil"
	"github.com/zuxichen/dg/pts"
)

// PointsTo answers which abstract memory objects the pointer produced by n
// may reference. Objects are identified by the node that created them.
// A nil or empty answer is not an error; the analysis degrades to a
// conservative dependence on unknown memory.
type PointsTo interface {
	PointsTo(n *pts.Node) []*pts.Node
}

// AnalysisConfig collects the inputs of Analyze.
type AnalysisConfig struct {
	Subgraph *pts.Subgraph

	// PointsTo resolves pointer operands. May be nil, in which case every
	// access touches unknown memory.
	PointsTo PointsTo

	// Options tunes iteration bounds, validation and log verbosity. Nil
	// means config.Default().
	Options *config.Config

	// Log receives diagnostics. Nil derives a log group from Options.
	Log *config.LogGroup
}

type aContext struct {
	sg  *pts.Subgraph
	pta PointsTo
	log *config.LogGroup

	states map[*pts.Node]*nodeState

	// defs lists the definition nodes in creation order; defObjs maps each
	// to the objects it may define.
	defs    []*pts.Node
	defObjs map[*pts.Node][]*pts.Node

	byID map[int]*pts.Node
}

// nodeState is the per-node reaching-definitions state: sets of definition
// node IDs holding before and after the node.
type nodeState struct {
	in, out intsets.Sparse
}

// Analyze runs reaching definitions to a fixed point over the subgraph and
// attaches data-dependence edges to every memory-reading node. The graph
// topology is never mutated, only the per-node annotations. The only
// possible error is dataflow.ErrNoConvergence when Options.MaxSteps is set
// and exhausted.
func Analyze(cfg AnalysisConfig) (*Result, error) {
	opts := cfg.Options
	if opts == nil {
		opts = config.Default()
	}
	logger := cfg.Log
	if logger == nil {
		logger = config.NewLogGroup(opts)
	}

	sg := cfg.Subgraph

	if opts.ValidateGraph {
		validator := pts.NewValidator(sg)
		if validator.Validate() {
			// Diagnostic only. Analyses stay conservative on malformed
			// graphs rather than aborting.
			logger.Warnf("subgraph is structurally invalid:\n%s", validator.Errors())
		}
	}

	ctx := &aContext{
		sg:      sg,
		pta:     cfg.PointsTo,
		log:     logger,
		states:  make(map[*pts.Node]*nodeState, sg.Size()),
		defObjs: make(map[*pts.Node][]*pts.Node),
		byID:    make(map[int]*pts.Node, sg.Size()),
	}

	for _, n := range sg.Nodes() {
		if n == nil {
			continue
		}
		ctx.states[n] = &nodeState{}
		ctx.byID[n.ID()] = n

		if objs := ctx.definedObjects(n); objs != nil {
			ctx.defs = append(ctx.defs, n)
			ctx.defObjs[n] = objs
		}
	}

	engine := &dataflow.Engine[*pts.Node]{
		Succs:    (*pts.Node).Successors,
		Transfer: ctx.runOnNode,
		MaxSteps: opts.MaxSteps,
	}

	order := ctx.visitOrder()
	logger.Debugf("reaching definitions over %d nodes, %d definitions", sg.Size(), len(ctx.defs))

	if err := engine.Run(order...); err != nil {
		return nil, err
	}

	deps := ctx.addDataDependences()
	logger.Infof("def-use: %d dependence edges over %d nodes", len(deps), sg.Size())

	return ctx.result(deps), nil
}

// visitOrder returns all nodes, entry-first: the reverse of the
// topologically sorted strongly connected components of the graph. Seeding
// the worklist in this order makes the fixpoint converge in few passes;
// any order would converge eventually.
func (ctx *aContext) visitOrder() []*pts.Node {
	adapter := graphutil.NewSubgraphAdapter(ctx.sg)
	sccs := topo.TarjanSCC(adapter)

	order := make([]*pts.Node, 0, ctx.sg.Size())
	for i := len(sccs) - 1; i >= 0; i-- {
		scc := sccs[i]
		ids := make([]int, 0, len(scc))
		for _, gn := range scc {
			ids = append(ids, int(gn.ID()))
		}
		// Stable order inside a component.
		slices.Sort(ids)
		for _, id := range ids {
			order = append(order, ctx.byID[id])
		}
	}
	return order
}

// definedObjects returns the abstract objects n may define, or nil if n is
// not a definition.
func (ctx *aContext) definedObjects(n *pts.Node) []*pts.Node {
	switch n.Kind() {
	case pts.Store:
		return ctx.resolveOperand(n, 0)
	case pts.Memcpy:
		return ctx.resolveOperand(n, 1)
	case pts.Free, pts.InvalidateObject:
		return ctx.resolveOperand(n, 0)
	}
	return nil
}

// readObjects returns the abstract objects n may read, or nil if n does not
// read memory.
func (ctx *aContext) readObjects(n *pts.Node) []*pts.Node {
	switch n.Kind() {
	case pts.Load, pts.Memcpy, pts.Free, pts.InvalidateObject:
		return ctx.resolveOperand(n, 0)
	}
	return nil
}

// resolveOperand resolves the i-th operand of n, tolerating malformed nodes
// with missing operands: those conservatively touch unknown memory, exactly
// like operands with no points-to answer. The validator reports the missing
// operand as a structural violation.
func (ctx *aContext) resolveOperand(n *pts.Node, i int) []*pts.Node {
	if i >= len(n.Operands()) {
		return []*pts.Node{ctx.sg.UnknownMemory()}
	}
	return ctx.resolve(n.Operand(i))
}

// resolve maps a pointer operand to abstract memory objects through the
// points-to answer. Absence of an answer degrades to unknown memory.
func (ctx *aContext) resolve(ptr *pts.Node) []*pts.Node {
	if ctx.pta != nil {
		if objs := ctx.pta.PointsTo(ptr); len(objs) > 0 {
			return objs
		}
	}
	return []*pts.Node{ctx.sg.UnknownMemory()}
}

// runOnNode is the reaching-definitions transfer function. prev is the
// predecessor whose out-set flows into n for the current work item; it is
// nil for seed items.
func (ctx *aContext) runOnNode(n, prev *pts.Node) bool {
	st := ctx.states[n]
	if st == nil {
		// Successor reference leaving the node set; the validator reports
		// it, the analysis just does not follow it.
		return false
	}

	changed := false
	if prev != nil {
		changed = st.in.UnionWith(&ctx.states[prev].out)
	}

	var out intsets.Sparse
	out.Copy(&st.in)

	if objs, isDef := ctx.defObjs[n]; isDef {
		// A store that certainly targets a single known object overwrites
		// it: kill the definitions that define only that object.
		if n.Kind() == pts.Store && len(objs) == 1 && objs[0] != ctx.sg.UnknownMemory() {
			for _, d := range ctx.defs {
				if d != n && ctx.definesOnly(d, objs[0]) {
					out.Remove(d.ID())
				}
			}
		}
		out.Insert(n.ID())
	}

	if !out.Equals(&st.out) {
		st.out.Copy(&out)
		changed = true
	}

	ctx.log.Tracef("transfer %v: in %s out %s", n, &st.in, &st.out)
	return changed
}

func (ctx *aContext) definesOnly(d, obj *pts.Node) bool {
	objs := ctx.defObjs[d]
	return len(objs) == 1 && objs[0] == obj
}

// mayDefine reports whether definition d may write obj. Unknown memory on
// either side keeps the answer conservative.
func (ctx *aContext) mayDefine(d, obj *pts.Node) bool {
	unknown := ctx.sg.UnknownMemory()
	if obj == unknown {
		return true
	}
	for _, o := range ctx.defObjs[d] {
		if o == obj || o == unknown {
			return true
		}
	}
	return false
}

// addDataDependences walks the converged states and attaches one dependence
// edge from each reaching definition of a read object to the reading node.
func (ctx *aContext) addDataDependences() []Dep {
	var deps []Dep
	for _, n := range ctx.sg.Nodes() {
		if n == nil {
			continue
		}
		reads := ctx.readObjects(n)
		if reads == nil {
			continue
		}

		st := ctx.states[n]
		for _, d := range ctx.defs {
			if d == n || !st.in.Has(d.ID()) {
				continue
			}
			for _, obj := range reads {
				if ctx.mayDefine(d, obj) {
					n.AddDataDependence(d, obj)
					deps = append(deps, Dep{Use: n, Def: d, Obj: obj})
				}
			}
		}
	}
	return deps
}
