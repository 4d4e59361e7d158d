// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package task provides task persistence and the agent-side task updater.
package task

import (
	"context"

	a2a "github.com/go-a2a/a2a-wire"
)

// Store defines the interface for task persistence operations.
//
// Implementations return deep copies: callers may mutate the returned tasks
// without affecting the stored state.
type Store interface {
	// Save persists a task, replacing any previous version with the same ID.
	Save(ctx context.Context, task *a2a.Task) error

	// Get retrieves a task by its ID.
	// It returns an error matched by [IsNotFound] if the task doesn't exist.
	Get(ctx context.Context, taskID string) (*a2a.Task, error)

	// Delete removes a task.
	// It returns an error matched by [IsNotFound] if the task doesn't exist.
	Delete(ctx context.Context, taskID string) error

	// List retrieves tasks ordered by ID. An empty contextID lists every task
	// and a non-positive limit means no limit.
	List(ctx context.Context, contextID string, limit, offset int) ([]*a2a.Task, error)

	// Count returns the number of tasks, optionally filtered by context.
	Count(ctx context.Context, contextID string) (int64, error)

	// Initialize prepares the storage backend for use.
	Initialize(ctx context.Context) error

	// Close releases the resources held by the store.
	Close(ctx context.Context) error
}
