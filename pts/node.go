package pts

import "fmt"

// NodeKind identifies the memory operation a node represents.
type NodeKind uint8

const (
	Noop NodeKind = iota
	NullAddr
	UnknownMem
	Function
	Phi
	Cast
	GEP
	Load
	Store
	Memcpy
	Free
	InvalidateObject
	Constant
)

var kindNames = [...]string{
	Noop:             "NOOP",
	NullAddr:         "NULL_ADDR",
	UnknownMem:       "UNKNOWN_MEM",
	Function:         "FUNCTION",
	Phi:              "PHI",
	Cast:             "CAST",
	GEP:              "GEP",
	Load:             "LOAD",
	Store:            "STORE",
	Memcpy:           "MEMCPY",
	Free:             "FREE",
	InvalidateObject: "INVALIDATE_OBJECT",
	Constant:         "CONSTANT",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is a single operation in a memory-flow graph. Operands and edges are
// non-owning references into the subgraph that created the node; the
// subgraph owns every node for its entire lifetime.
//
// The topology of a node (operands, predecessors, successors) is wired
// during graph construction and is immutable afterwards. Analyses only
// mutate the data-dependence annotations.
type Node struct {
	id       int
	kind     NodeKind
	operands []*Node
	preds    []*Node
	succs    []*Node

	dataDeps []DataDep
}

// DataDep records that the node carrying it uses the memory object Obj whose
// last visible definition is Def.
type DataDep struct {
	Def *Node
	Obj *Node
}

// ID returns the unique non-negative identity of the node.
func (n *Node) ID() int { return n.id }

// Kind returns the operation kind of the node.
func (n *Node) Kind() NodeKind { return n.kind }

// Operands returns the ordered operand list. The returned slice must not be
// mutated.
func (n *Node) Operands() []*Node { return n.operands }

// Operand returns the i-th operand.
func (n *Node) Operand(i int) *Node { return n.operands[i] }

// Predecessors returns the control-flow predecessors of the node.
func (n *Node) Predecessors() []*Node { return n.preds }

// Successors returns the control-flow successors of the node.
func (n *Node) Successors() []*Node { return n.succs }

// AddSuccessor wires the edge n→s in both directions. Edges are
// bidirectional facts; one-sided updates are exactly the programming error
// the validator reports.
func (n *Node) AddSuccessor(s *Node) {
	n.succs = append(n.succs, s)
	s.preds = append(s.preds, n)
}

// AddDataDependence attaches a dependence on the definition def of the
// memory object obj. Duplicate edges are dropped so that reprocessing a
// converged analysis leaves the annotations unchanged.
func (n *Node) AddDataDependence(def, obj *Node) {
	for _, d := range n.dataDeps {
		if d.Def == def && d.Obj == obj {
			return
		}
	}
	n.dataDeps = append(n.dataDeps, DataDep{Def: def, Obj: obj})
}

// DataDependencies returns the dependence edges attached to the node by
// analyses, in insertion order.
func (n *Node) DataDependencies() []DataDep { return n.dataDeps }

func (n *Node) String() string {
	return fmt.Sprintf("%v with ID %d", n.kind, n.id)
}
