// Package store defines checkpoint persistence for graph sessions. A
// checkpoint is the state snapshot saved after a completed run, keyed by an
// opaque session id so later runs with the same id continue from it. Backends
// live in the subpackages memory, file, sqlite, redis and postgres.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a checkpoint id does not exist.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is a persisted state snapshot for a session.
type Checkpoint struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	NodeName  string         `json:"node_name"`
	State     map[string]any `json:"state"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

// CheckpointStore persists checkpoints. Retention is the caller's concern:
// nothing expires unless the backend is configured to do so or Clear is
// called.
type CheckpointStore interface {
	// Save stores a checkpoint.
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by id. Returns ErrNotFound if absent.
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// LoadLatest retrieves the highest-version checkpoint for a session,
	// or (nil, nil) when the session has none.
	LoadLatest(ctx context.Context, sessionID string) (*Checkpoint, error)

	// List returns all checkpoints for a session in ascending version order.
	List(ctx context.Context, sessionID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint by id.
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints for a session.
	Clear(ctx context.Context, sessionID string) error
}
