// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/redis/go-redis/v9"

	a2a "github.com/go-a2a/a2a-wire"
)

// DefaultRedisPrefix prefixes every key written by [RedisStore].
const DefaultRedisPrefix = "a2a:"

// RedisStore is a [Store] keeping tasks as JSON documents in Redis.
//
// Keys:
//
//	<prefix>task:<id>        the task document
//	<prefix>tasks            set of every task ID
//	<prefix>context:<id>     set of the task IDs of a context
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisStoreOption configures a [RedisStore].
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithRedisTTL expires task documents ttl after their last save.
func WithRedisTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedisStore creates a new RedisStore using client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	s := &RedisStore{
		client: client,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) taskKey(taskID string) string       { return s.prefix + "task:" + taskID }
func (s *RedisStore) allKey() string                     { return s.prefix + "tasks" }
func (s *RedisStore) contextKey(contextID string) string { return s.prefix + "context:" + contextID }

// Save stores task and indexes it by context.
func (s *RedisStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return NewValidationError(task.ID, err)
	}

	data, err := json.Marshal(task)
	if err != nil {
		return NewStoreError("save", task.ID, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.taskKey(task.ID), data, s.ttl)
		pipe.SAdd(ctx, s.allKey(), task.ID)
		if task.ContextID != "" {
			pipe.SAdd(ctx, s.contextKey(task.ContextID), task.ID)
		}
		return nil
	})
	if err != nil {
		return NewStoreError("save", task.ID, err)
	}

	return nil
}

// Get retrieves a task by its ID.
func (s *RedisStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	data, err := s.client.Get(ctx, s.taskKey(taskID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, a2a.NewTaskNotFoundError(taskID)
		}
		return nil, NewStoreError("get", taskID, err)
	}

	var task a2a.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, NewStoreError("get", taskID, err)
	}

	return &task, nil
}

// Delete removes a task and its index entries.
func (s *RedisStore) Delete(ctx context.Context, taskID string) error {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.taskKey(taskID))
		pipe.SRem(ctx, s.allKey(), taskID)
		if task.ContextID != "" {
			pipe.SRem(ctx, s.contextKey(task.ContextID), taskID)
		}
		return nil
	})
	if err != nil {
		return NewStoreError("delete", taskID, err)
	}

	return nil
}

// indexKey returns the set indexing the tasks of contextID, or every task.
func (s *RedisStore) indexKey(contextID string) string {
	if contextID != "" {
		return s.contextKey(contextID)
	}
	return s.allKey()
}

// members returns the task IDs of the index set key. With a TTL, IDs whose
// document expired are removed from the set.
func (s *RedisStore) members(ctx context.Context, key string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, key).Result()
	if err != nil || s.ttl <= 0 || len(ids) == 0 {
		return ids, err
	}

	exists := make([]*redis.IntCmd, len(ids))
	if _, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			exists[i] = pipe.Exists(ctx, s.taskKey(id))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	live := ids[:0]
	var expired []any
	for i, id := range ids {
		if exists[i].Val() == 0 {
			expired = append(expired, id)
			continue
		}
		live = append(live, id)
	}
	if len(expired) > 0 {
		if err := s.client.SRem(ctx, key, expired...).Err(); err != nil {
			return nil, err
		}
	}

	return live, nil
}

// List retrieves tasks ordered by ID. IDs whose document expired are skipped.
func (s *RedisStore) List(ctx context.Context, contextID string, limit, offset int) ([]*a2a.Task, error) {
	ids, err := s.members(ctx, s.indexKey(contextID))
	if err != nil {
		return nil, NewStoreError("list", "", err)
	}
	slices.Sort(ids)
	if offset > 0 {
		ids = ids[min(offset, len(ids)):]
	}
	if limit > 0 {
		ids = ids[:min(limit, len(ids))]
	}

	tasks := []*a2a.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.taskKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, NewStoreError("list", "", err)
	}
	for i, v := range values {
		doc, ok := v.(string)
		if !ok {
			continue
		}
		var task a2a.Task
		if err := json.Unmarshal([]byte(doc), &task); err != nil {
			return nil, NewStoreError("list", ids[i], err)
		}
		tasks = append(tasks, &task)
	}

	return tasks, nil
}

// Count returns the number of indexed tasks. With a TTL, expired tasks are
// pruned from the index first.
func (s *RedisStore) Count(ctx context.Context, contextID string) (int64, error) {
	key := s.indexKey(contextID)
	if s.ttl > 0 {
		ids, err := s.members(ctx, key)
		if err != nil {
			return 0, NewStoreError("count", "", err)
		}
		return int64(len(ids)), nil
	}

	n, err := s.client.SCard(ctx, key).Result()
	if err != nil {
		return 0, NewStoreError("count", "", err)
	}
	return n, nil
}

// Initialize checks the connection.
func (s *RedisStore) Initialize(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return NewStoreError("initialize", "", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close(ctx context.Context) error {
	return s.client.Close()
}
