// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	a2a "github.com/go-a2a/a2a-wire"
)

// InMemoryStore is an in-memory implementation of [Store].
// Task data is lost when the process stops.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*a2a.Task
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks: make(map[string]*a2a.Task),
	}
}

// Save persists a copy of task.
func (s *InMemoryStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return NewValidationError(task.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = task.Clone()

	return nil
}

// Get retrieves a copy of the task with the given ID.
func (s *InMemoryStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, a2a.NewTaskNotFoundError(taskID)
	}

	return task.Clone(), nil
}

// Delete removes a task.
func (s *InMemoryStore) Delete(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return a2a.NewTaskNotFoundError(taskID)
	}
	delete(s.tasks, taskID)

	return nil
}

// List retrieves tasks ordered by ID.
func (s *InMemoryStore) List(ctx context.Context, contextID string, limit, offset int) ([]*a2a.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.tasks))
	tasks := []*a2a.Task{}
	skipped := 0
	for _, id := range ids {
		task := s.tasks[id]
		if contextID != "" && task.ContextID != contextID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(tasks) >= limit {
			break
		}
		tasks = append(tasks, task.Clone())
	}

	return tasks, nil
}

// Count returns the number of stored tasks.
func (s *InMemoryStore) Count(ctx context.Context, contextID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if contextID == "" {
		return int64(len(s.tasks)), nil
	}

	var count int64
	for _, task := range s.tasks {
		if task.ContextID == contextID {
			count++
		}
	}

	return count, nil
}

// Initialize is a no-op.
func (s *InMemoryStore) Initialize(ctx context.Context) error {
	return nil
}

// Close drops every task.
func (s *InMemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.tasks)
	return nil
}
