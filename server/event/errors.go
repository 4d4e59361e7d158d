// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueClosed is returned when publishing to or reading from a closed queue.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrInvalidEvent is returned when publishing a nil frame.
	ErrInvalidEvent = errors.New("invalid event")
)

// NoTaskQueueError is returned when no queue exists for a task.
type NoTaskQueueError struct {
	TaskID string
}

// Error implements the error interface.
func (e *NoTaskQueueError) Error() string {
	return fmt.Sprintf("no task queue found for task ID: %s", e.TaskID)
}

// Is reports whether target is a *NoTaskQueueError.
func (e *NoTaskQueueError) Is(target error) bool {
	_, ok := target.(*NoTaskQueueError)
	return ok
}

// TaskQueueExistsError is returned when creating a queue for a task that already has one.
type TaskQueueExistsError struct {
	TaskID string
}

// Error implements the error interface.
func (e *TaskQueueExistsError) Error() string {
	return fmt.Sprintf("task queue already exists for task ID: %s", e.TaskID)
}

// Is reports whether target is a *TaskQueueExistsError.
func (e *TaskQueueExistsError) Is(target error) bool {
	_, ok := target.(*TaskQueueExistsError)
	return ok
}
