// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/server/event"
)

// Updater publishes the status and artifact frames of one task to its queue.
//
// Once a terminal state or a final frame has been published, every further
// update fails with [*NotUpdatableError].
type Updater struct {
	taskID    string
	contextID string
	queue     *event.Queue

	mu       sync.Mutex
	terminal bool
	state    a2a.TaskState
}

// NewUpdater creates an Updater for the task identified by taskID and contextID.
func NewUpdater(queue *event.Queue, taskID, contextID string) (*Updater, error) {
	if queue == nil {
		return nil, errors.New("event queue cannot be nil")
	}
	if taskID == "" {
		return nil, errors.New("task ID cannot be empty")
	}

	return &Updater{
		taskID:    taskID,
		contextID: contextID,
		queue:     queue,
	}, nil
}

// TaskID returns the task ID this updater is associated with.
func (u *Updater) TaskID() string { return u.taskID }

// ContextID returns the context ID this updater is associated with.
func (u *Updater) ContextID() string { return u.contextID }

// IsTerminal reports whether a final update has been published.
func (u *Updater) IsTerminal() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.terminal
}

// UpdateStatus publishes a status update. Terminal states are always final.
func (u *Updater) UpdateStatus(ctx context.Context, state a2a.TaskState, msg *a2a.Message, final bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminal {
		return NewNotUpdatableError(u.taskID, u.state)
	}

	final = final || state.IsTerminal()
	ev := &a2a.TaskStatusUpdateEvent{
		TaskID:    u.taskID,
		ContextID: u.contextID,
		Status:    a2a.NewTaskStatus(state, msg),
		Final:     final,
	}
	if err := u.queue.Publish(ctx, ev); err != nil {
		return NewUpdaterError("update_status", u.taskID, err)
	}
	u.state = state
	u.terminal = final

	return nil
}

// ArtifactOptions are the optional fields of [Updater.AddArtifact].
type ArtifactOptions struct {
	// ArtifactID defaults to a new UUID.
	ArtifactID string
	Name       string
	Metadata   map[string]any
	// Append adds the parts to the artifact with the same ID.
	Append bool
	// LastChunk marks the final chunk of a streamed artifact.
	LastChunk bool
}

// AddArtifact publishes an artifact update carrying parts and returns the artifact ID.
func (u *Updater) AddArtifact(ctx context.Context, parts []a2a.Part, opts ArtifactOptions) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminal {
		return "", NewNotUpdatableError(u.taskID, u.state)
	}

	artifactID := opts.ArtifactID
	if artifactID == "" {
		artifactID = uuid.NewString()
	}
	artifact := &a2a.Artifact{
		ArtifactID: artifactID,
		Name:       opts.Name,
		Parts:      parts,
		Metadata:   opts.Metadata,
	}
	if err := artifact.Validate(); err != nil {
		return "", NewValidationError(u.taskID, err)
	}

	ev := &a2a.TaskArtifactUpdateEvent{
		TaskID:    u.taskID,
		ContextID: u.contextID,
		Artifact:  artifact,
		Append:    opts.Append,
		LastChunk: opts.LastChunk,
	}
	if err := u.queue.Publish(ctx, ev); err != nil {
		return "", NewUpdaterError("add_artifact", u.taskID, err)
	}

	return artifactID, nil
}

// NewAgentMessage creates an agent message bound to the task.
func (u *Updater) NewAgentMessage(parts []a2a.Part) *a2a.Message {
	return a2a.NewAgentPartsMessage(parts, u.contextID, u.taskID)
}

// Submit marks the task as submitted.
func (u *Updater) Submit(ctx context.Context, msg *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateSubmitted, msg, false)
}

// StartWork marks the task as working.
func (u *Updater) StartWork(ctx context.Context, msg *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateWorking, msg, false)
}

// Complete marks the task as completed.
func (u *Updater) Complete(ctx context.Context, msg *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateCompleted, msg, true)
}

// Failed marks the task as failed.
func (u *Updater) Failed(ctx context.Context, msg *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateFailed, msg, true)
}

// Reject marks the task as rejected.
func (u *Updater) Reject(ctx context.Context, msg *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateRejected, msg, true)
}

// Cancel marks the task as canceled.
func (u *Updater) Cancel(ctx context.Context, msg *a2a.Message) error {
	return u.UpdateStatus(ctx, a2a.TaskStateCanceled, msg, true)
}

// RequiresInput marks the task as waiting for user input.
func (u *Updater) RequiresInput(ctx context.Context, msg *a2a.Message, final bool) error {
	return u.UpdateStatus(ctx, a2a.TaskStateInputRequired, msg, final)
}

// RequiresAuth marks the task as waiting for authentication.
func (u *Updater) RequiresAuth(ctx context.Context, msg *a2a.Message, final bool) error {
	return u.UpdateStatus(ctx, a2a.TaskStateAuthRequired, msg, final)
}
