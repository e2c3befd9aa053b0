// Package redis provides a checkpoint store backed by Redis. Checkpoints are
// stored as JSON values; a sorted set per session indexes ids by version so
// LoadLatest is a single ZRANGE.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iangithub/langchain-ai-agent/store"
)

// RedisCheckpointStore implements store.CheckpointStore using Redis.
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.CheckpointStore = (*RedisCheckpointStore)(nil)

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix for all keys, default "agentlab:".
	Prefix string
	// TTL expires checkpoints after the duration; 0 keeps them forever.
	TTL time.Duration
}

// NewRedisCheckpointStore creates a Redis-backed store.
func NewRedisCheckpointStore(opts RedisOptions) *RedisCheckpointStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "agentlab:"
	}

	return &RedisCheckpointStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close closes the underlying client.
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

func (s *RedisCheckpointStore) checkpointKey(id string) string {
	return fmt.Sprintf("%scheckpoint:%s", s.prefix, id)
}

func (s *RedisCheckpointStore) sessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s:checkpoints", s.prefix, id)
}

// Save stores a checkpoint and indexes it under its session.
func (s *RedisCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ID), data, s.ttl)
	if checkpoint.SessionID != "" {
		sessionKey := s.sessionKey(checkpoint.SessionID)
		pipe.ZAdd(ctx, sessionKey, redis.Z{
			Score:  float64(checkpoint.Version),
			Member: checkpoint.ID,
		})
		if s.ttl > 0 {
			pipe.Expire(ctx, sessionKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save checkpoint to redis: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by id.
func (s *RedisCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(checkpointID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint from redis: %w", err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// LoadLatest returns the highest-version checkpoint for a session, or nil.
func (s *RedisCheckpointStore) LoadLatest(ctx context.Context, sessionID string) (*store.Checkpoint, error) {
	ids, err := s.client.ZRevRange(ctx, s.sessionKey(sessionID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query session index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.Load(ctx, ids[0])
}

// List returns a session's checkpoints in ascending version order.
func (s *RedisCheckpointStore) List(ctx context.Context, sessionID string) ([]*store.Checkpoint, error) {
	ids, err := s.client.ZRange(ctx, s.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query session index: %w", err)
	}

	out := make([]*store.Checkpoint, 0, len(ids))
	for _, id := range ids {
		cp, err := s.Load(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Expired value still referenced by the index.
				continue
			}
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

// Delete removes a checkpoint and its session index entry.
func (s *RedisCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	cp, err := s.Load(ctx, checkpointID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.checkpointKey(checkpointID))
	if cp.SessionID != "" {
		pipe.ZRem(ctx, s.sessionKey(cp.SessionID), checkpointID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Clear removes all checkpoints for a session.
func (s *RedisCheckpointStore) Clear(ctx context.Context, sessionID string) error {
	ids, err := s.client.ZRange(ctx, s.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to query session index: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.checkpointKey(id))
	}
	pipe.Del(ctx, s.sessionKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}
