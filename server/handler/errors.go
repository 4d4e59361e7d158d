// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"errors"
	"fmt"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/server/push"
)

// ServerError is a failure of a collaborator (store, executor, queue) while
// serving a request.
//
// It maps to the JSON-RPC error found in its chain, or to an internal error.
type ServerError struct {
	Operation string
	TaskID    string
	Err       error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s for task %s: %v", e.Operation, e.TaskID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServerError) Unwrap() error {
	return e.Err
}

// NewServerError creates a new ServerError.
func NewServerError(operation, taskID string, err error) *ServerError {
	return &ServerError{
		Operation: operation,
		TaskID:    taskID,
		Err:       err,
	}
}

func invalidParams(path, format string, args ...any) *a2a.Error {
	return &a2a.Error{
		Kind: a2a.InvalidParams,
		Path: path,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// pushConfigError maps a [push.ConfigStore] lookup failure.
func pushConfigError(taskID, configID string, err error) error {
	switch {
	case errors.Is(err, push.ErrConfigNotFound):
		return invalidParams("params.pushNotificationConfigId", "task %s has no push notification config %q", taskID, configID)
	case errors.Is(err, push.ErrAmbiguousConfig):
		return invalidParams("params.pushNotificationConfigId", "task %s has several push notification configs", taskID)
	default:
		return NewServerError("get push notification config", taskID, err)
	}
}
