package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/iangithub/langchain-ai-agent/store"
)

// StateGraph declares nodes and edges over a state schema. Call Compile to
// validate the configuration and obtain a Runnable.
type StateGraph struct {
	schema       *Schema
	nodes        map[string]*Node
	edges        []Edge
	conditionals map[string]*conditionalEdge

	checkpoints store.CheckpointStore
	nodeTimeout time.Duration
}

type conditionalEdge struct {
	route    RouteFunc
	pathMap  map[string]string
	fallback string
}

// NewStateGraph creates a graph over the given state schema.
func NewStateGraph(schema *Schema) *StateGraph {
	return &StateGraph{
		schema:       schema,
		nodes:        make(map[string]*Node),
		conditionals: make(map[string]*conditionalEdge),
	}
}

// Schema returns the graph's state schema.
func (g *StateGraph) Schema() *Schema {
	return g.schema
}

// AddNode registers a node with the given name, description and function.
// Adding a node with an existing name replaces it.
func (g *StateGraph) AddNode(name, description string, fn NodeFunc) {
	g.nodes[name] = &Node{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// DeclareWrites records the fields a node updates. Compile uses the declared
// write-sets to reject fan-out branches whose concurrent writes would collide
// on a field without a reducer.
func (g *StateGraph) DeclareWrites(name string, fields ...string) {
	if n, ok := g.nodes[name]; ok {
		n.Writes = fields
	}
}

// AddEdge adds an unconditional edge. Multiple edges leaving the same node
// fan out: every target runs concurrently after the source completes.
func (g *StateGraph) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdges adds a conditional edge resolved at runtime. The route
// function returns a label that is looked up in pathMap to pick the target.
// Labels missing from pathMap fall back to the declared fallback target; the
// fallback is mandatory so unrecognized classifications never fail the run.
func (g *StateGraph) AddConditionalEdges(from string, route RouteFunc, pathMap map[string]string, fallback string) {
	g.conditionals[from] = &conditionalEdge{
		route:    route,
		pathMap:  pathMap,
		fallback: fallback,
	}
}

// SetEntryPoint marks a node as the execution entry. Equivalent to
// AddEdge(START, name); calling it repeatedly (or mixing it with explicit
// START edges) declares a fan-out at the entry.
func (g *StateGraph) SetEntryPoint(name string) {
	g.AddEdge(START, name)
}

// SetCheckpointStore attaches a checkpoint store. When an invocation carries
// a session id, the engine loads the latest checkpoint for that id as the
// starting state and persists the final state after a successful run.
func (g *StateGraph) SetCheckpointStore(cs store.CheckpointStore) {
	g.checkpoints = cs
}

// SetNodeTimeout sets the default per-node timeout. A node exceeding it fails
// the run. Zero means no timeout. Individual nodes may override via
// SetNodeTimeoutFor.
func (g *StateGraph) SetNodeTimeout(d time.Duration) {
	g.nodeTimeout = d
}

// SetNodeTimeoutFor overrides the node timeout for a single node.
func (g *StateGraph) SetNodeTimeoutFor(name string, d time.Duration) {
	if n, ok := g.nodes[name]; ok {
		n.Timeout = d
	}
}

// Compile validates the graph and returns a Runnable. Configuration errors
// (missing entry point, unknown edge targets, undeclared conditional targets,
// nodes that cannot reach END, colliding concurrent write-sets) are reported
// here so execution never starts on a broken graph.
func (g *StateGraph) Compile() (*Runnable, error) {
	if len(g.successors(START)) == 0 {
		return nil, ErrEntryPointNotSet
	}

	if err := g.validateEndpoints(); err != nil {
		return nil, err
	}

	reachable := g.reachableFromStart()
	if err := g.validateTermination(reachable); err != nil {
		return nil, err
	}
	if err := g.validateWriteSets(); err != nil {
		return nil, err
	}

	return &Runnable{
		graph:    g,
		preds:    g.predecessors(),
		reach:    g.reachability(reachable),
		sessions: newSessionLocks(),
	}, nil
}

// successors returns the static edge targets of a node, deduplicated and
// sorted for deterministic scheduling.
func (g *StateGraph) successors(name string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.edges {
		if e.From == name && !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	sort.Strings(out)
	return out
}

// allSuccessors includes conditional targets and the fallback.
func (g *StateGraph) allSuccessors(name string) []string {
	if ce, ok := g.conditionals[name]; ok {
		seen := make(map[string]bool)
		var out []string
		for _, to := range ce.pathMap {
			if !seen[to] {
				seen[to] = true
				out = append(out, to)
			}
		}
		if !seen[ce.fallback] {
			out = append(out, ce.fallback)
		}
		sort.Strings(out)
		return out
	}
	return g.successors(name)
}

func (g *StateGraph) validateEndpoints() error {
	for _, e := range g.edges {
		if e.From != START {
			if _, ok := g.nodes[e.From]; !ok {
				return fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From)
			}
		}
		if e.To != END {
			if _, ok := g.nodes[e.To]; !ok {
				return fmt.Errorf("%w: edge target %s", ErrNodeNotFound, e.To)
			}
		}
	}
	for from, ce := range g.conditionals {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("%w: conditional edge source %s", ErrNodeNotFound, from)
		}
		for label, to := range ce.pathMap {
			if to != END {
				if _, ok := g.nodes[to]; !ok {
					return fmt.Errorf("%w: conditional target %s (label %q)", ErrNodeNotFound, to, label)
				}
			}
		}
		if ce.fallback == "" {
			return fmt.Errorf("conditional edge from %s has no fallback target", from)
		}
		if ce.fallback != END {
			if _, ok := g.nodes[ce.fallback]; !ok {
				return fmt.Errorf("%w: conditional fallback %s", ErrNodeNotFound, ce.fallback)
			}
		}
	}
	return nil
}

func (g *StateGraph) reachableFromStart() map[string]bool {
	reachable := make(map[string]bool)
	queue := g.successors(START)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == END || reachable[n] {
			continue
		}
		reachable[n] = true
		queue = append(queue, g.allSuccessors(n)...)
	}
	return reachable
}

func (g *StateGraph) validateTermination(reachable map[string]bool) error {
	// Reverse walk from END over all possible edges.
	canEnd := make(map[string]bool)
	preds := g.predecessors()
	queue := append([]string(nil), preds[END]...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == START || canEnd[n] {
			continue
		}
		canEnd[n] = true
		queue = append(queue, preds[n]...)
	}

	names := make([]string, 0, len(reachable))
	for n := range reachable {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if len(g.allSuccessors(n)) == 0 {
			return fmt.Errorf("%w: %s", ErrNoOutgoingEdge, n)
		}
		if !canEnd[n] {
			return fmt.Errorf("%w: %s", ErrUnreachableEnd, n)
		}
	}
	return nil
}

// validateWriteSets checks the direct targets of every fan-out: two sibling
// branches must not both declare a write to a field that merges by overwrite.
// The check is opt-in — nodes without a declared write-set are skipped.
func (g *StateGraph) validateWriteSets() error {
	sources := make(map[string]bool)
	sources[START] = true
	for name := range g.nodes {
		sources[name] = true
	}
	for from := range sources {
		targets := g.successors(from)
		if len(targets) < 2 {
			continue
		}
		writers := make(map[string]string) // field -> first sibling writing it
		for _, to := range targets {
			n, ok := g.nodes[to]
			if !ok {
				continue
			}
			for _, f := range n.Writes {
				if g.schema != nil && g.schema.HasReducer(f) {
					continue
				}
				if prev, dup := writers[f]; dup {
					return fmt.Errorf("%w %q: nodes %s and %s (fan-out from %s)",
						ErrConflictingWrites, f, prev, to, from)
				}
				writers[f] = to
			}
		}
	}
	return nil
}

// predecessors maps every node (and END) to the distinct sources of edges
// pointing at it, conditional targets included.
func (g *StateGraph) predecessors() map[string][]string {
	preds := make(map[string]map[string]bool)
	add := func(from, to string) {
		if preds[to] == nil {
			preds[to] = make(map[string]bool)
		}
		preds[to][from] = true
	}
	for _, e := range g.edges {
		add(e.From, e.To)
	}
	for from, ce := range g.conditionals {
		for _, to := range ce.pathMap {
			add(from, to)
		}
		add(from, ce.fallback)
	}

	out := make(map[string][]string, len(preds))
	for to, set := range preds {
		for from := range set {
			out[to] = append(out[to], from)
		}
		sort.Strings(out[to])
	}
	return out
}

// reachability computes, for each reachable node, the set of nodes any of its
// execution paths may still visit. The engine uses it to decide whether a
// join's missing predecessor can still be produced by a running branch.
func (g *StateGraph) reachability(reachable map[string]bool) map[string]map[string]bool {
	reach := make(map[string]map[string]bool, len(reachable))
	for n := range reachable {
		set := make(map[string]bool)
		queue := g.allSuccessors(n)
		for len(queue) > 0 {
			m := queue[0]
			queue = queue[1:]
			if m == END || set[m] {
				continue
			}
			set[m] = true
			queue = append(queue, g.allSuccessors(m)...)
		}
		reach[n] = set
	}
	return reach
}
