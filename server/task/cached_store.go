// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	a2a "github.com/go-a2a/a2a-wire"
)

// CacheConfig configures the read-through cache of [CachedStore].
type CacheConfig struct {
	// NumCounters is the number of keys tracked for admission. Defaults to 10 * MaxCost.
	NumCounters int64
	// MaxCost is the maximum number of cached tasks. Defaults to 10000.
	MaxCost int64
	// TTL expires cached tasks. Zero keeps them until evicted.
	TTL time.Duration
}

// CachedStore keeps recently used tasks of another [Store] in memory.
//
// Writes go through to the backing store before the cache is updated.
type CachedStore struct {
	Store

	cache *ristretto.Cache[string, *a2a.Task]
	ttl   time.Duration
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore wraps store with a ristretto cache.
func NewCachedStore(store Store, config CacheConfig) (*CachedStore, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if config.MaxCost <= 0 {
		config.MaxCost = 10_000
	}
	if config.NumCounters <= 0 {
		config.NumCounters = config.MaxCost * 10
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *a2a.Task]{
		NumCounters:        config.NumCounters,
		MaxCost:            config.MaxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	return &CachedStore{
		Store: store,
		cache: cache,
		ttl:   config.TTL,
	}, nil
}

// Save writes task to the backing store and caches a copy.
func (s *CachedStore) Save(ctx context.Context, task *a2a.Task) error {
	if err := s.Store.Save(ctx, task); err != nil {
		s.cache.Del(task.ID)
		return err
	}
	s.cache.SetWithTTL(task.ID, task.Clone(), 1, s.ttl)
	s.cache.Wait()

	return nil
}

// Get returns the cached task or loads it from the backing store.
func (s *CachedStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	if task, ok := s.cache.Get(taskID); ok {
		return task.Clone(), nil
	}

	task, err := s.Store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.cache.SetWithTTL(taskID, task.Clone(), 1, s.ttl)
	s.cache.Wait()

	return task, nil
}

// Delete removes the task from the cache and the backing store.
func (s *CachedStore) Delete(ctx context.Context, taskID string) error {
	s.cache.Del(taskID)
	return s.Store.Delete(ctx, taskID)
}

// Close releases the cache and closes the backing store.
func (s *CachedStore) Close(ctx context.Context) error {
	s.cache.Close()
	return s.Store.Close(ctx)
}
