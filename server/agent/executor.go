// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent defines the boundary between the request handlers and the
// agent logic that produces task updates.
package agent

import (
	"context"

	"github.com/go-a2a/a2a-wire/server/event"
)

// Executor runs the agent logic of a task.
//
// Implementations publish the results of a request to queue, typically through
// a task.Updater, and return once they are done producing frames. The queue is
// closed by the caller after Execute returns.
type Executor interface {
	// Execute processes the message of reqCtx.
	//
	// The frames published to queue are folded into the task snapshot, so the
	// last status frame should be final for a task to leave the running state.
	Execute(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error

	// Cancel asks a running task to stop.
	//
	// It publishes the canceled status to queue, or returns an error when the
	// task cannot be canceled.
	Cancel(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error
}
