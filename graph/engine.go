package graph

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iangithub/langchain-ai-agent/log"
	"github.com/iangithub/langchain-ai-agent/store"
)

// Config carries per-invocation settings.
type Config struct {
	// SessionID keys checkpoint persistence. When set and the graph has a
	// checkpoint store, the run starts from the session's latest saved
	// state and saves the final state on success.
	SessionID string
}

// WithSessionID builds a Config for a checkpointed session run.
func WithSessionID(id string) *Config {
	return &Config{SessionID: id}
}

// NewSessionID generates a fresh opaque session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Runnable is a compiled graph ready for execution.
type Runnable struct {
	graph *StateGraph

	// preds maps each node to the distinct sources of edges into it.
	preds map[string][]string

	// reach maps each node to the set of nodes its execution may still
	// visit; used to defer joins while a predecessor can still run.
	reach map[string]map[string]bool

	sessions *sessionLocks
}

// Invoke executes the graph to completion and returns the final merged state.
func (r *Runnable) Invoke(ctx context.Context, initial State) (State, error) {
	return r.InvokeWithConfig(ctx, initial, nil)
}

// InvokeWithConfig executes the graph with per-invocation configuration.
//
// Execution proceeds in steps: every active node of a step runs concurrently
// against a snapshot of the state, then all updates are merged (in node-name
// order, so disjoint writes are order-independent) before the next step is
// scheduled. A node with several incoming edges activated in this run only
// executes after all of them have completed. Any node error aborts the run;
// no state is returned and no checkpoint is written.
func (r *Runnable) InvokeWithConfig(ctx context.Context, initial State, cfg *Config) (State, error) {
	sessionID := ""
	if cfg != nil {
		sessionID = cfg.SessionID
	}

	state := r.graph.schema.Init()
	version := 0

	persist := sessionID != "" && r.graph.checkpoints != nil
	if persist {
		// Serialize load/run/save per session so overlapping requests for
		// the same session cannot lose updates.
		unlock := r.sessions.lock(sessionID)
		defer unlock()

		cp, err := r.graph.checkpoints.LoadLatest(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint for session %s: %w", sessionID, err)
		}
		if cp != nil {
			// Serializing stores hand values back as generic JSON types;
			// revive them to the declared field types before merging.
			state, err = r.graph.schema.Update(state, r.graph.schema.Revive(cp.State))
			if err != nil {
				return nil, fmt.Errorf("restore checkpoint for session %s: %w", sessionID, err)
			}
			version = cp.Version
		}
	}

	if initial != nil {
		var err error
		state, err = r.graph.schema.Update(state, initial)
		if err != nil {
			return nil, err
		}
	}

	final, err := r.run(ctx, state)
	if err != nil {
		return nil, err
	}

	if persist {
		cp := &store.Checkpoint{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			NodeName:  END,
			State:     final,
			Timestamp: time.Now(),
			Version:   version + 1,
		}
		if err := r.graph.checkpoints.Save(ctx, cp); err != nil {
			return nil, fmt.Errorf("save checkpoint for session %s: %w", sessionID, err)
		}
	}

	return final, nil
}

// run drives the step loop from START to END.
func (r *Runnable) run(ctx context.Context, state State) (State, error) {
	frontier := r.graph.successors(START)
	completed := make(map[string]bool)
	pending := make(map[string]bool)

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		updates, err := r.runStep(ctx, frontier, state)
		if err != nil {
			return nil, err
		}

		for i, name := range frontier {
			state, err = r.graph.schema.Update(state, updates[i])
			if err != nil {
				return nil, fmt.Errorf("merge update from node %s: %w", name, err)
			}
			completed[name] = true
		}

		candidates := make(map[string]bool, len(pending))
		maps.Copy(candidates, pending)
		for _, name := range frontier {
			for _, to := range r.nextTargets(ctx, name, state) {
				if to != END {
					candidates[to] = true
				}
			}
		}

		frontier = frontier[:0]
		pending = make(map[string]bool)
		names := sortedKeys(candidates)
		// Re-activation (loops) must run the node again. Clear completion
		// before the join checks so a join whose predecessor is also being
		// re-activated waits for the fresh run instead of firing on the
		// previous iteration's flag.
		for _, cand := range names {
			delete(completed, cand)
		}
		for _, cand := range names {
			if r.joinReady(cand, completed, candidates) {
				frontier = append(frontier, cand)
			} else {
				pending[cand] = true
			}
		}
	}

	return state, nil
}

// runStep executes the frontier nodes concurrently, each against its own
// shallow copy of the state, and returns their partial updates in frontier
// order. The first node failure aborts the step.
func (r *Runnable) runStep(ctx context.Context, frontier []string, state State) ([]State, error) {
	updates := make([]State, len(frontier))
	errs := make([]error, len(frontier))

	var wg sync.WaitGroup
	for i, name := range frontier {
		node, ok := r.graph.nodes[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
		}
		wg.Add(1)
		go func(i int, node *Node) {
			defer wg.Done()
			update, err := r.runNode(ctx, node, maps.Clone(state))
			if err != nil {
				errs[i] = &NodeError{Node: node.Name, Err: err}
				return
			}
			updates[i] = update
		}(i, node)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return updates, nil
}

// runNode invokes a single node, enforcing its timeout and recovering panics.
func (r *Runnable) runNode(ctx context.Context, node *Node, state State) (State, error) {
	timeout := node.Timeout
	if timeout <= 0 {
		timeout = r.graph.nodeTimeout
	}

	if timeout <= 0 {
		return callNode(ctx, node, state)
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		update State
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		update, err := callNode(tctx, node, state)
		ch <- result{update, err}
	}()

	select {
	case res := <-ch:
		return res.update, res.err
	case <-tctx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("timed out after %v", timeout)
	}
}

func callNode(ctx context.Context, node *Node, state State) (update State, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return node.Function(ctx, state)
}

// nextTargets resolves the outgoing edges of a completed node against the
// merged state. Conditional routing falls back to the declared default when
// the route label is not in the path map.
func (r *Runnable) nextTargets(ctx context.Context, name string, state State) []string {
	if ce, ok := r.graph.conditionals[name]; ok {
		label := ce.route(ctx, state)
		to, ok := ce.pathMap[label]
		if !ok {
			log.Warn("graph: route label %q from node %s not declared, falling back to %s", label, name, ce.fallback)
			to = ce.fallback
		}
		return []string{to}
	}
	return r.graph.successors(name)
}

// joinReady reports whether a candidate node may execute now. A node whose
// static in-degree is greater than one is a join: it waits until every
// predecessor that is still producible in this run has completed. A
// predecessor that was never activated and that no pending branch can still
// reach is not waited for.
func (r *Runnable) joinReady(name string, completed, candidates map[string]bool) bool {
	preds := r.preds[name]
	if len(preds) <= 1 {
		return true
	}
	for _, p := range preds {
		if p == START || completed[p] {
			continue
		}
		for cand := range candidates {
			if cand == name {
				continue
			}
			if cand == p || r.reach[cand][p] {
				return false
			}
		}
	}
	return true
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sessionLocks serializes checkpointed runs per session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *sessionLocks) lock(id string) func() {
	s.mu.Lock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
