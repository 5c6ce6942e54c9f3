// Package dataflow implements a generic fixed-point worklist engine for
// forward dataflow analyses over graphs that may contain cycles.
//
// The engine is parameterized by a client transfer function. Termination is
// the client's responsibility: it is guaranteed when the per-node analysis
// state forms a finite-height lattice and the transfer function is monotone.
// Clients may additionally set a step bound to observe non-convergence.
package dataflow

import (
	"errors"

	"github.com/zuxichen/dg/internal/queue"
)

// ErrNoConvergence is returned by Run when the step bound is exhausted
// before the analysis stabilizes.
var ErrNoConvergence = errors.New("dataflow: analysis did not stabilize within the step bound")

// TransferFunc applies a client analysis to n. prev is the predecessor whose
// change caused n to be (re)enqueued; for seed nodes it is the zero value.
// It reports whether it changed n's local analysis state.
type TransferFunc[N comparable] func(n, prev N) bool

// Engine drives a transfer function over a graph until no node reports a
// change.
type Engine[N comparable] struct {
	// Succs enumerates the nodes that a change at a given node propagates
	// to.
	Succs func(N) []N

	// Transfer is the client analysis.
	Transfer TransferFunc[N]

	// MaxSteps bounds the number of transfer invocations. A value <= 0
	// disables the bound.
	MaxSteps int
}

type workItem[N comparable] struct {
	node, prev N
}

// Run seeds the worklist with the entry nodes in order and processes items
// until the worklist is empty. Whenever the transfer function reports a
// change, every successor of the changed node is re-enqueued with that node
// as its incoming context, so changes propagate forward through merges and
// loops. The traversal is deterministic: pure FIFO order, seeded as given.
func (e *Engine[N]) Run(entries ...N) error {
	var wl queue.Queue[workItem[N]]
	var zero N
	for _, n := range entries {
		wl.Push(workItem[N]{node: n, prev: zero})
	}

	steps := 0
	for !wl.Empty() {
		if e.MaxSteps > 0 && steps >= e.MaxSteps {
			return ErrNoConvergence
		}
		steps++

		item := wl.Pop()
		if e.Transfer(item.node, item.prev) {
			for _, succ := range e.Succs(item.node) {
				wl.Push(workItem[N]{node: succ, prev: item.node})
			}
		}
	}

	return nil
}
