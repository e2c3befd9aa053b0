// Package graph builds and runs stateful workflow graphs. Nodes return
// partial state updates that a schema merges with per-field reducers; edges
// are fixed, conditional with a mandatory fallback, or fan out to concurrent
// branches that join downstream. Compiled graphs run with per-node timeouts,
// cancellation, and optional per-session checkpointing through a store.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// START is the sentinel name for the graph entry point.
const START = "START"

// END is the sentinel name for graph termination.
const END = "END"

var (
	// ErrEntryPointNotSet is returned by Compile when no edge leaves START.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when an edge references an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned by Compile when a reachable node has no
	// outgoing edge and therefore can never hand control onward.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrUnreachableEnd is returned by Compile when a reachable node has no
	// path to END on some execution branch.
	ErrUnreachableEnd = errors.New("node cannot reach END")

	// ErrUndeclaredField is returned when a node update writes a field that
	// is not part of the graph schema.
	ErrUndeclaredField = errors.New("field not declared in schema")

	// ErrConflictingWrites is returned by Compile when two concurrent
	// branches declare writes to the same field and the field has no
	// reducer to merge them.
	ErrConflictingWrites = errors.New("concurrent branches write overlapping field")
)

// State is the shared record threaded through a graph execution. Each key is
// a field declared in the graph's Schema.
type State = map[string]any

// NodeFunc is the unit of work owned by a node. It receives a snapshot of the
// current state and returns a partial update: only the fields it mentions are
// changed in the merged result. It must not mutate the state it is given.
type NodeFunc func(ctx context.Context, state State) (State, error)

// RouteFunc inspects state and returns a routing label. The label is resolved
// against the conditional edge's path map; unknown labels fall back to the
// edge's declared default target.
type RouteFunc func(ctx context.Context, state State) string

// Node is a named unit of work within a graph.
type Node struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes what the node does.
	Description string

	// Function computes the node's partial state update.
	Function NodeFunc

	// Writes optionally declares the fields this node updates. When two
	// nodes that can run concurrently both declare a field without a
	// reducer, Compile fails instead of leaving the merge order to chance.
	Writes []string

	// Timeout overrides the graph-wide node timeout when positive.
	Timeout time.Duration
}

// Edge is a directed, unconditional connection between two nodes. Several
// edges leaving the same node form a fan-out: every target is scheduled
// concurrently.
type Edge struct {
	From string
	To   string
}

// NodeError wraps a failure inside a node so the caller can tell which node
// aborted the run.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}
