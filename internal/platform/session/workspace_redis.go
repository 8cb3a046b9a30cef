// Package session はWorkspaceの保存先（Redis・インメモリ）を提供します。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dental_backend/internal/feature/workspace/domain/entity"
	"dental_backend/internal/feature/workspace/usecase"
)

// DefaultTTL は最終更新からWorkspaceを保持する既定の期間です。
const DefaultTTL = time.Hour

// WorkspaceRedis implements usecase.WorkspaceRepository using Redis.
// Updates use WATCH/MULTI optimistic transactions.
type WorkspaceRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ usecase.WorkspaceRepository = (*WorkspaceRedis)(nil)

// NewWorkspaceRedis creates a new WorkspaceRedis instance.
// If ttl is 0, it defaults to DefaultTTL. If prefix is empty, it uses "workspace".
func NewWorkspaceRedis(client *redis.Client, prefix string, ttl time.Duration) *WorkspaceRedis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "workspace"
	}
	return &WorkspaceRedis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// workspaceKey returns the Redis key for a workspace.
func (r *WorkspaceRedis) workspaceKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Get retrieves a workspace by its ID.
func (r *WorkspaceRedis) Get(ctx context.Context, id string) (*entity.Workspace, error) {
	return r.load(ctx, r.client, id)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load reads and decodes a workspace through the given client or transaction.
func (r *WorkspaceRedis) load(ctx context.Context, c getter, id string) (*entity.Workspace, error) {
	data, err := c.Get(ctx, r.workspaceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrWorkspaceNotFound
		}
		return nil, err
	}

	var snap entity.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace: %w", err)
	}
	return entity.Restore(snap)
}

// Update applies fn inside a WATCH transaction and stores the result with a refreshed TTL.
func (r *WorkspaceRedis) Update(ctx context.Context, id string, fn func(w *entity.Workspace) error) (*entity.Workspace, error) {
	key := r.workspaceKey(id)

	var out *entity.Workspace
	txf := func(tx *redis.Tx) error {
		w, err := r.load(ctx, tx, id)
		if errors.Is(err, usecase.ErrWorkspaceNotFound) {
			w = entity.NewWorkspace(id)
		} else if err != nil {
			return err
		}

		if err := fn(w); err != nil {
			return err
		}

		data, err := json.Marshal(w.Snapshot())
		if err != nil {
			return fmt.Errorf("failed to marshal workspace: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = w
		return nil
	}

	for attempt := 0; attempt < usecase.MaxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Optimistic lock lost; retry.
			continue
		}
		return nil, err
	}
	return nil, usecase.ErrConcurrentUpdate
}

// Delete removes a workspace.
func (r *WorkspaceRedis) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.workspaceKey(id)).Err()
}

// Ping checks the Redis connection.
func (r *WorkspaceRedis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
