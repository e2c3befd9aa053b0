// Package memory provides an in-process checkpoint store. State values are
// kept as-is (no serialization), so it is the natural backend for sessions
// whose state carries Go types such as message slices.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iangithub/langchain-ai-agent/store"
)

// MemoryCheckpointStore implements store.CheckpointStore with a mutex-guarded
// map. Safe for concurrent use.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	sessions    map[string][]string // session id -> checkpoint ids, insertion order
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		sessions:    make(map[string][]string),
	}
}

// Save stores a checkpoint.
func (s *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	if checkpoint.ID == "" {
		return fmt.Errorf("checkpoint id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.checkpoints[checkpoint.ID]; !exists {
		s.sessions[checkpoint.SessionID] = append(s.sessions[checkpoint.SessionID], checkpoint.ID)
	}
	cp := *checkpoint
	s.checkpoints[checkpoint.ID] = &cp
	return nil
}

// Load retrieves a checkpoint by id.
func (s *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, checkpointID)
	}
	out := *cp
	return &out, nil
}

// LoadLatest returns the highest-version checkpoint for a session, or nil.
func (s *MemoryCheckpointStore) LoadLatest(_ context.Context, sessionID string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *store.Checkpoint
	for _, id := range s.sessions[sessionID] {
		cp := s.checkpoints[id]
		if latest == nil || cp.Version > latest.Version {
			latest = cp
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// List returns a session's checkpoints in ascending version order.
func (s *MemoryCheckpointStore) List(_ context.Context, sessionID string) ([]*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.Checkpoint, 0, len(s.sessions[sessionID]))
	for _, id := range s.sessions[sessionID] {
		cp := *s.checkpoints[id]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Sessions returns the ids of all sessions holding at least one checkpoint,
// sorted. Handy for inspection and tests; not part of store.CheckpointStore.
func (s *MemoryCheckpointStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.sessions))
	for id, cps := range s.sessions {
		if len(cps) > 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Delete removes a checkpoint by id.
func (s *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil
	}
	delete(s.checkpoints, checkpointID)

	ids := s.sessions[cp.SessionID]
	for i, id := range ids {
		if id == checkpointID {
			s.sessions[cp.SessionID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Clear removes all checkpoints for a session.
func (s *MemoryCheckpointStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.sessions[sessionID] {
		delete(s.checkpoints, id)
	}
	delete(s.sessions, sessionID)
	return nil
}
