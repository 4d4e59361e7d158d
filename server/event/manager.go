// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Manager owns the queues of the tasks currently being executed, keyed by task ID.
type Manager struct {
	mu     sync.RWMutex
	queues map[string]*Queue

	maxQueueSize int
	logger       *slog.Logger
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithDefaultMaxQueueSize sets the subscription buffer size of new queues.
func WithDefaultMaxQueueSize(size int) ManagerOption {
	return func(m *Manager) {
		m.maxQueueSize = size
	}
}

// WithManagerLogger sets the logger passed to new queues.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an empty [Manager].
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		queues:       make(map[string]*Queue),
		maxQueueSize: DefaultMaxQueueSize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates the queue of taskID.
//
// It returns a [*TaskQueueExistsError] while a previous queue of the task is still registered.
func (m *Manager) Create(taskID string) (*Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.queues[taskID]; ok {
		return nil, &TaskQueueExistsError{TaskID: taskID}
	}
	q := NewQueue(
		WithQueueName(fmt.Sprintf("TaskQueue-%s", taskID)),
		WithMaxQueueSize(m.maxQueueSize),
		WithLogger(m.logger),
	)
	m.queues[taskID] = q

	return q, nil
}

// Get returns the queue of taskID, or nil.
func (m *Manager) Get(taskID string) *Queue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queues[taskID]
}

// Tap subscribes to the running queue of taskID.
func (m *Manager) Tap(taskID string) (*Subscription, error) {
	q := m.Get(taskID)
	if q == nil {
		return nil, &NoTaskQueueError{TaskID: taskID}
	}
	return q.Tap()
}

// Close closes and forgets the queue of taskID.
func (m *Manager) Close(taskID string) error {
	m.mu.Lock()
	q, ok := m.queues[taskID]
	delete(m.queues, taskID)
	m.mu.Unlock()

	if !ok {
		return &NoTaskQueueError{TaskID: taskID}
	}
	return q.Close()
}

// List returns the IDs of the tasks that have a queue, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.queues))
	for id := range m.queues {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Count returns the number of registered queues.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queues)
}

// CloseAll closes every queue.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	queues := m.queues
	m.queues = make(map[string]*Queue)
	m.mu.Unlock()

	for _, q := range queues {
		q.Close()
	}
	return nil
}
