// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"context"
	"sync"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/server/agent"
	"github.com/go-a2a/a2a-wire/server/event"
)

// run tracks one execution of the agent for a task.
//
// The persist loop reports every frame it has handled through update, so that
// callers can wait for the store to catch up with the frames they observed.
type run struct {
	taskID string
	queue  *event.Queue
	reqCtx *agent.RequestContext

	mu        sync.Mutex
	processed int
	snapshot  *a2a.Task
	changed   chan struct{}
	done      chan struct{}
}

func newRun(queue *event.Queue, reqCtx *agent.RequestContext, snapshot *a2a.Task) *run {
	return &run{
		taskID:   snapshot.ID,
		queue:    queue,
		reqCtx:   reqCtx,
		snapshot: snapshot.Clone(),
		changed:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// update records a handled frame and the resulting snapshot. A nil snapshot
// keeps the previous one.
func (r *run) update(snapshot *a2a.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processed++
	if snapshot != nil {
		r.snapshot = snapshot
	}
	close(r.changed)
	r.changed = make(chan struct{})
}

// settled reports whether the persisted task is terminal or interrupted.
func (r *run) settled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.snapshot.Status.State
	return state.IsTerminal() || state.IsInterrupted()
}

func (r *run) finish() {
	close(r.done)
}

// wait blocks until cond holds or the persist loop ends, and returns the
// latest snapshot.
func (r *run) wait(ctx context.Context, cond func(processed int, snapshot *a2a.Task) bool) (*a2a.Task, error) {
	for {
		r.mu.Lock()
		ok := cond(r.processed, r.snapshot)
		snapshot, changed := r.snapshot.Clone(), r.changed
		r.mu.Unlock()

		if ok {
			return snapshot, nil
		}
		select {
		case <-changed:
		case <-r.done:
			r.mu.Lock()
			defer r.mu.Unlock()
			return r.snapshot.Clone(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// waitProcessed waits until the persist loop has handled n frames.
func (r *run) waitProcessed(ctx context.Context, n int) (*a2a.Task, error) {
	return r.wait(ctx, func(processed int, _ *a2a.Task) bool { return processed >= n })
}
