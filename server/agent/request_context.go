// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/auth"
)

// RequestContext holds what an [Executor] needs to know about the request it serves.
type RequestContext struct {
	params       *a2a.MessageSendParams
	taskID       string
	contextID    string
	currentTask  *a2a.Task
	relatedTasks []*a2a.Task
	user         auth.User
}

// NewRequestContext creates a RequestContext.
//
// An empty taskID or contextID is taken from the message, then from
// currentTask, and is generated when still missing. A nil user is replaced by
// [auth.UnauthenticatedUser].
func NewRequestContext(params *a2a.MessageSendParams, taskID, contextID string, currentTask *a2a.Task, user auth.User) *RequestContext {
	if params == nil {
		params = &a2a.MessageSendParams{}
	}
	if user == nil {
		user = auth.UnauthenticatedUser{}
	}

	if msg := params.Message; msg != nil {
		taskID = cmp.Or(taskID, msg.TaskID)
		contextID = cmp.Or(contextID, msg.ContextID)
	}
	if currentTask != nil {
		taskID = cmp.Or(taskID, currentTask.ID)
		contextID = cmp.Or(contextID, currentTask.ContextID)
	}

	return &RequestContext{
		params:      params,
		taskID:      cmp.Or(taskID, uuid.NewString()),
		contextID:   cmp.Or(contextID, uuid.NewString()),
		currentTask: currentTask,
		user:        user,
	}
}

// TaskID returns the ID of the task being served.
func (rc *RequestContext) TaskID() string { return rc.taskID }

// ContextID returns the ID of the conversation context.
func (rc *RequestContext) ContextID() string { return rc.contextID }

// Message returns the incoming message, or nil for a cancel request.
func (rc *RequestContext) Message() *a2a.Message { return rc.params.Message }

// Params returns the incoming message send params.
func (rc *RequestContext) Params() *a2a.MessageSendParams { return rc.params }

// Configuration returns the send configuration of the request, or nil.
func (rc *RequestContext) Configuration() *a2a.MessageSendConfiguration {
	return rc.params.Configuration
}

// Metadata returns the request metadata.
func (rc *RequestContext) Metadata() map[string]any { return rc.params.Metadata }

// CurrentTask returns the stored task the message continues, or nil for a new task.
func (rc *RequestContext) CurrentTask() *a2a.Task { return rc.currentTask }

// User returns the caller.
func (rc *RequestContext) User() auth.User { return rc.user }

// RelatedTasks returns the other tasks of the same context attached to the request.
func (rc *RequestContext) RelatedTasks() []*a2a.Task {
	return slices.Clone(rc.relatedTasks)
}

// AttachRelatedTask attaches another task of the conversation.
func (rc *RequestContext) AttachRelatedTask(task *a2a.Task) error {
	if task == nil {
		return fmt.Errorf("related task cannot be nil")
	}
	if task.ID == rc.taskID {
		return fmt.Errorf("task %s cannot be related to itself", task.ID)
	}
	rc.relatedTasks = append(rc.relatedTasks, task)
	return nil
}

// UserInput returns the text parts of the incoming message joined by delimiter.
func (rc *RequestContext) UserInput(delimiter string) string {
	return a2a.GetMessageText(rc.params.Message, delimiter)
}

// String returns a string representation of the RequestContext.
func (rc *RequestContext) String() string {
	return fmt.Sprintf("RequestContext{taskID: %s, contextID: %s, related: %d, user: %q}",
		rc.taskID, rc.contextID, len(rc.relatedTasks), rc.user.UserName())
}
