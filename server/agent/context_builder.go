// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"fmt"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/auth"
	"github.com/go-a2a/a2a-wire/server/task"
)

// ContextBuilder builds the [RequestContext] handed to an [Executor].
type ContextBuilder interface {
	Build(ctx context.Context, params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task, user auth.User) (*RequestContext, error)
}

// SimpleContextBuilder is the default [ContextBuilder].
//
// With a store, it attaches the other tasks of the same context as related tasks.
type SimpleContextBuilder struct {
	store task.Store
}

var _ ContextBuilder = (*SimpleContextBuilder)(nil)

// NewSimpleContextBuilder creates a SimpleContextBuilder. store may be nil.
func NewSimpleContextBuilder(store task.Store) *SimpleContextBuilder {
	return &SimpleContextBuilder{store: store}
}

// Build implements [ContextBuilder].
func (b *SimpleContextBuilder) Build(ctx context.Context, params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task, user auth.User) (*RequestContext, error) {
	if params == nil {
		return nil, errors.New("message send params cannot be nil")
	}

	reqCtx := NewRequestContext(params, taskID, contextID, currentTask, user)
	if b.store == nil {
		return reqCtx, nil
	}

	related, err := b.store.List(ctx, reqCtx.ContextID(), 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list tasks of context %s: %w", reqCtx.ContextID(), err)
	}
	for _, t := range related {
		if t.ID == reqCtx.TaskID() {
			continue
		}
		if err := reqCtx.AttachRelatedTask(t); err != nil {
			return nil, err
		}
	}

	return reqCtx, nil
}
