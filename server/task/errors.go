// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"errors"
	"fmt"

	a2a "github.com/go-a2a/a2a-wire"
)

// NotUpdatableError is returned when updating a task that already reached a terminal state.
type NotUpdatableError struct {
	TaskID string
	State  a2a.TaskState
}

// Error returns the error message.
func (e *NotUpdatableError) Error() string {
	return fmt.Sprintf("task %s in state %s cannot be updated", e.TaskID, e.State)
}

// StoreError wraps a failure of the storage backend.
type StoreError struct {
	Operation string
	TaskID    string
	Err       error
}

// Error returns the error message.
func (e *StoreError) Error() string {
	return fmt.Sprintf("task store %s operation failed for task %s: %v", e.Operation, e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when saving a structurally invalid task.
type ValidationError struct {
	TaskID string
	Err    error
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("task %s validation failed: %v", e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UpdaterError wraps a failure to publish an update.
type UpdaterError struct {
	Operation string
	TaskID    string
	Err       error
}

// Error returns the error message.
func (e *UpdaterError) Error() string {
	return fmt.Sprintf("task updater %s operation failed for task %s: %v", e.Operation, e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e *UpdaterError) Unwrap() error {
	return e.Err
}

// NewNotUpdatableError creates a new NotUpdatableError.
func NewNotUpdatableError(taskID string, state a2a.TaskState) *NotUpdatableError {
	return &NotUpdatableError{
		TaskID: taskID,
		State:  state,
	}
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, taskID string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		TaskID:    taskID,
		Err:       err,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(taskID string, err error) *ValidationError {
	return &ValidationError{
		TaskID: taskID,
		Err:    err,
	}
}

// NewUpdaterError creates a new UpdaterError.
func NewUpdaterError(operation, taskID string, err error) *UpdaterError {
	return &UpdaterError{
		Operation: operation,
		TaskID:    taskID,
		Err:       err,
	}
}

// IsNotFound reports whether err is the task not found error returned by a [Store].
func IsNotFound(err error) bool {
	var rpcErr *a2a.JSONRPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == a2a.TaskNotFoundErrorCode
}
