package pts

import (
	"fmt"
	"strings"

	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// ViolationRule categorizes a structural violation found by the validator.
type ViolationRule int

const (
	// InvalidNode covers violations of node-set membership rules, such as a
	// node registered twice.
	InvalidNode ViolationRule = iota
	// InvalidOperands covers dangling operand references and arity-per-kind
	// violations.
	InvalidOperands
	// InvalidEdges covers missing predecessors and asymmetric edges.
	InvalidEdges
	// UnreachableNode marks nodes with no path from the root.
	UnreachableNode
)

func (r ViolationRule) String() string {
	switch r {
	case InvalidNode:
		return "Invalid node"
	case InvalidOperands:
		return "Invalid operands"
	case InvalidEdges:
		return "Invalid number of edges"
	case UnreachableNode:
		return "Unreachable node"
	}
	return fmt.Sprintf("ViolationRule(%d)", int(r))
}

// Violation is a single structural rule violation. Detail optionally
// explains the finding in free form.
type Violation struct {
	Rule   ViolationRule
	Node   *Node
	Detail string
}

// Validator is a read-only structural checker over a subgraph. It is a
// debugging aid for graph producers: it accumulates every violation instead
// of stopping at the first, and a malformed graph is a reportable condition,
// never a fatal one. It may be re-run at any time after construction without
// side effects.
type Validator struct {
	sg         *Subgraph
	violations []Violation
}

// NewValidator returns a validator for sg. The subgraph is never mutated.
func NewValidator(sg *Subgraph) *Validator {
	return &Validator{sg: sg}
}

// Validate runs both checking passes unconditionally and reports whether
// the graph is invalid.
func (v *Validator) Validate() bool {
	v.violations = v.violations[:0]
	invalid := v.checkOperands()
	invalid = v.checkEdges() || invalid
	return invalid
}

// Violations returns the structured findings of the last Validate call.
func (v *Validator) Violations() []Violation { return v.violations }

// Errors renders the accumulated findings as one multi-line entry per
// violation, naming the node kind, ID and operand listing.
func (v *Validator) Errors() string {
	var sb strings.Builder
	for _, viol := range v.violations {
		sb.WriteString(viol.Rule.String())
		sb.WriteString(":\n")
		dumpNode(&sb, viol.Node)
		if viol.Detail != "" {
			fmt.Fprintf(&sb, "(%s)\n", viol.Detail)
		}
	}
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *Node) {
	fmt.Fprintf(sb, "%v with ID %d\n  - operands: [", n.kind, n.id)
	for i, op := range n.operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%d %v", op.id, op.kind)
	}
	sb.WriteString("]\n")
}

func (v *Validator) report(rule ViolationRule, n *Node, detail string) {
	v.violations = append(v.violations, Violation{Rule: rule, Node: n, Detail: detail})
}

func hasDuplicateOperand(n *Node) bool {
	seen := make(map[*Node]struct{}, len(n.operands))
	for _, op := range n.operands {
		if _, found := seen[op]; found {
			return true
		}
		seen[op] = struct{}{}
	}
	return false
}

// checkOperands verifies node-set uniqueness, operand referential integrity
// and the arity contract of every kind.
func (v *Validator) checkOperands() bool {
	before := len(v.violations)

	known := make(map[*Node]struct{}, len(v.sg.nodes))
	for _, n := range v.sg.nodes {
		if n == nil {
			continue
		}
		if _, found := known[n]; found {
			v.report(InvalidNode, n, "node is multiple times in the graph")
		}
		known[n] = struct{}{}
	}

	for _, n := range v.sg.nodes {
		if n == nil {
			continue
		}

		for _, op := range n.operands {
			if v.sg.IsSentinel(op) {
				continue
			}
			if _, found := known[op]; !found {
				v.report(InvalidOperands, n, "node has unknown (maybe dangling) operand")
			}
		}

		switch n.kind {
		case Phi:
			if len(n.operands) == 0 {
				v.report(InvalidOperands, n, "empty PHI")
			} else if hasDuplicateOperand(n) {
				v.report(InvalidOperands, n, "PHI node contains duplicated operand")
			}
		case NullAddr, UnknownMem, Noop, Function:
			if len(n.operands) != 0 {
				v.report(InvalidOperands, n, "should not have an operand")
			}
		case GEP, Load, Cast, InvalidateObject, Constant, Free:
			if len(n.operands) != 1 {
				v.report(InvalidOperands, n, "should have exactly one operand")
			}
		case Store, Memcpy:
			if len(n.operands) != 2 {
				v.report(InvalidOperands, n, "should have exactly two operands")
			}
		}
	}

	return len(v.violations) != before
}

// canBeOutsideGraph reports whether nodes of this kind may legitimately live
// outside normal control flow: no predecessors and no path from the root.
func canBeOutsideGraph(n *Node) bool {
	switch n.kind {
	case Function, Constant, UnknownMem, NullAddr:
		return true
	}
	return false
}

// checkEdges verifies edge symmetry, the presence of predecessors and
// reachability from the root.
func (v *Validator) checkEdges() bool {
	before := len(v.violations)

	for _, n := range v.sg.nodes {
		if n == nil {
			continue
		}

		if len(n.preds) == 0 && n != v.sg.root && !canBeOutsideGraph(n) {
			v.report(InvalidEdges, n, "non-root node has no predecessors")
		}

		for _, succ := range n.succs {
			if !slices.Contains(succ.preds, n) {
				v.report(InvalidEdges, n, "node not set as a predecessor of some of its successors")
			}
		}
	}

	reachable := v.reachableFromRoot()
	for _, n := range v.sg.nodes {
		if n == nil {
			continue
		}
		if !reachable[n] && !canBeOutsideGraph(n) {
			v.report(UnreachableNode, n, "")
		}
	}

	return len(v.violations) != before
}

// succIterator adapts a subgraph to graph.Iterator so the reachability check
// can reuse the library BFS. Vertices are positions in the filtered node
// slice; successor references that point outside the node set are skipped
// here and caught by the operand pass instead.
type succIterator struct {
	nodes []*Node
	index map[*Node]int
}

func newSuccIterator(sg *Subgraph) succIterator {
	it := succIterator{index: make(map[*Node]int, len(sg.nodes))}
	for _, n := range sg.nodes {
		if n == nil {
			continue
		}
		if _, found := it.index[n]; found {
			continue
		}
		it.index[n] = len(it.nodes)
		it.nodes = append(it.nodes, n)
	}
	return it
}

func (it succIterator) Order() int { return len(it.nodes) }

func (it succIterator) Visit(v int, do func(w int, c int64) bool) bool {
	for _, succ := range it.nodes[v].succs {
		w, found := it.index[succ]
		if !found {
			continue
		}
		if do(w, 1) {
			return true
		}
	}
	return false
}

// reachableFromRoot returns the set of nodes reachable from the root by
// following successor edges. With a nil or unregistered root nothing is
// reachable.
func (v *Validator) reachableFromRoot() map[*Node]bool {
	reachable := make(map[*Node]bool)

	it := newSuccIterator(v.sg)
	rootIdx, found := it.index[v.sg.root]
	if !found {
		return reachable
	}

	reachable[v.sg.root] = true
	graph.BFS(it, rootIdx, func(_, w int, _ int64) {
		reachable[it.nodes[w]] = true
	})

	return reachable
}
