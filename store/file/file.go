// Package file provides a checkpoint store backed by JSON files, one file
// per checkpoint, under a caller-supplied directory. Suitable for local
// development and single-process deployments.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/iangithub/langchain-ai-agent/store"
)

// FileCheckpointStore implements store.CheckpointStore on the filesystem.
type FileCheckpointStore struct {
	mu  sync.Mutex
	dir string
}

var _ store.CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore creates the directory if needed and returns a store.
func NewFileCheckpointStore(dir string) (*FileCheckpointStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &FileCheckpointStore{dir: dir}, nil
}

func (s *FileCheckpointStore) path(checkpointID string) string {
	return filepath.Join(s.dir, checkpointID+".json")
}

// Save writes the checkpoint as a JSON file.
func (s *FileCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	if checkpoint.ID == "" {
		return fmt.Errorf("checkpoint id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(s.path(checkpoint.ID), data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by id.
func (s *FileCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(checkpointID)
}

func (s *FileCheckpointStore) read(checkpointID string) (*store.Checkpoint, error) {
	data, err := os.ReadFile(s.path(checkpointID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, checkpointID)
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint %s: %w", checkpointID, err)
	}
	return &cp, nil
}

// LoadLatest returns the highest-version checkpoint for a session, or nil.
func (s *FileCheckpointStore) LoadLatest(ctx context.Context, sessionID string) (*store.Checkpoint, error) {
	all, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[len(all)-1], nil
}

// List returns a session's checkpoints in ascending version order.
func (s *FileCheckpointStore) List(_ context.Context, sessionID string) ([]*store.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint directory: %w", err)
	}

	var out []*store.Checkpoint
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		cp, err := s.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		if cp.SessionID == sessionID {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Delete removes a checkpoint file.
func (s *FileCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(checkpointID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoint files for a session.
func (s *FileCheckpointStore) Clear(ctx context.Context, sessionID string) error {
	all, err := s.List(ctx, sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cp := range all {
		if err := os.Remove(s.path(cp.ID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete checkpoint %s: %w", cp.ID, err)
		}
	}
	return nil
}
