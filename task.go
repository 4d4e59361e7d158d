// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
)

// TaskState represents the state of a Task.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been submitted.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateWorking indicates the task is being worked on.
	TaskStateWorking TaskState = "working"
	// TaskStateInputRequired indicates the task waits for more input from the user.
	TaskStateInputRequired TaskState = "input-required"
	// TaskStateAuthRequired indicates the task waits for the user to authenticate.
	TaskStateAuthRequired TaskState = "auth-required"
	// TaskStateCompleted indicates the task has been completed.
	TaskStateCompleted TaskState = "completed"
	// TaskStateCanceled indicates the task has been canceled.
	TaskStateCanceled TaskState = "canceled"
	// TaskStateFailed indicates the task has failed.
	TaskStateFailed TaskState = "failed"
	// TaskStateRejected indicates the agent declined the task.
	TaskStateRejected TaskState = "rejected"
	// TaskStateUnknown is reported for states a client cannot interpret.
	TaskStateUnknown TaskState = "unknown"
)

// TaskStates lists every defined state.
var TaskStates = []TaskState{
	TaskStateSubmitted,
	TaskStateWorking,
	TaskStateInputRequired,
	TaskStateAuthRequired,
	TaskStateCompleted,
	TaskStateCanceled,
	TaskStateFailed,
	TaskStateRejected,
	TaskStateUnknown,
}

// IsTerminal reports whether no further progress is possible once a task reaches s.
//
// [TaskStateUnknown] is not terminal.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected:
		return true
	default:
		return false
	}
}

// IsInterrupted reports whether the task paused waiting on the client.
func (s TaskState) IsInterrupted() bool {
	return s == TaskStateInputRequired || s == TaskStateAuthRequired
}

// IsKnown reports whether s is one of the defined states.
func (s TaskState) IsKnown() bool {
	switch s {
	case TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired, TaskStateAuthRequired,
		TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected, TaskStateUnknown:
		return true
	default:
		return false
	}
}

// TaskStatus is the current status of a task.
type TaskStatus struct {
	State TaskState `json:"state"`
	// Message is an optional status message.
	Message *Message `json:"message,omitzero"`
	// Timestamp is an ISO 8601 datetime string.
	Timestamp string `json:"timestamp,omitzero"`
}

// NewTaskStatus returns a status in the given state stamped with the current time.
func NewTaskStatus(state TaskState, msg *Message) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   msg,
		Timestamp: Now(),
	}
}

// Now returns the current UTC time in the timestamp format used by [TaskStatus].
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Clone returns a deep copy of s.
func (s TaskStatus) Clone() TaskStatus {
	s.Message = s.Message.Clone()
	return s
}

// Task is the aggregate root of the protocol.
type Task struct {
	ID        string         `json:"id"`
	ContextID string         `json:"contextId,omitzero"`
	Status    TaskStatus     `json:"status"`
	History   []*Message     `json:"history,omitzero"`
	Artifacts []*Artifact    `json:"artifacts,omitzero"`
	Metadata  map[string]any `json:"metadata,omitzero"`
}

// NewTask creates a new task in the submitted state from an initial message.
//
// The task and context identifiers come from the message when present and are generated otherwise.
func NewTask(msg *Message) *Task {
	taskID := msg.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	contextID := msg.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}
	return &Task{
		ID:        taskID,
		ContextID: contextID,
		Status:    NewTaskStatus(TaskStateSubmitted, nil),
		History:   []*Message{msg},
	}
}

// CompletedTask creates a task in the completed state.
func CompletedTask(taskID, contextID string, artifacts []*Artifact, history []*Message) *Task {
	return &Task{
		ID:        taskID,
		ContextID: contextID,
		Status:    NewTaskStatus(TaskStateCompleted, nil),
		Artifacts: artifacts,
		History:   history,
	}
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := &Task{
		ID:        t.ID,
		ContextID: t.ContextID,
		Status:    t.Status.Clone(),
		Metadata:  cloneMap(t.Metadata),
	}
	if t.History != nil {
		cp.History = make([]*Message, len(t.History))
		for i, m := range t.History {
			cp.History[i] = m.Clone()
		}
	}
	if t.Artifacts != nil {
		cp.Artifacts = make([]*Artifact, len(t.Artifacts))
		for i, a := range t.Artifacts {
			cp.Artifacts[i] = a.Clone()
		}
	}
	return cp
}

// WithHistoryLength returns a copy of t keeping only the most recent n history messages.
//
// A nil n keeps the full history and zero drops it entirely.
func (t *Task) WithHistoryLength(n *int) *Task {
	cp := t.Clone()
	if n == nil || len(cp.History) <= *n {
		return cp
	}
	if *n <= 0 {
		cp.History = []*Message{}
		return cp
	}
	cp.History = cp.History[len(cp.History)-*n:]
	return cp
}

// Artifact returns the artifact with the given identifier, or nil.
func (t *Task) Artifact(artifactID string) *Artifact {
	for _, a := range t.Artifacts {
		if a.ArtifactID == artifactID {
			return a
		}
	}
	return nil
}

// Validate reports whether t satisfies the structural rules enforced by the parser.
func (t *Task) Validate() error {
	if t.ID == "" {
		return schemaErrorf("id", "must not be empty")
	}
	if !t.Status.State.IsKnown() {
		return schemaErrorf("status.state", "unknown task state %q", t.Status.State)
	}
	if t.Status.Message != nil {
		if err := t.Status.Message.Validate(); err != nil {
			return err
		}
	}
	for i, m := range t.History {
		if err := m.Validate(); err != nil {
			return schemaErrorf(fieldPath("history").index(i), "%v", err)
		}
	}
	for i, a := range t.Artifacts {
		if err := a.Validate(); err != nil {
			return schemaErrorf(fieldPath("artifacts").index(i), "%v", err)
		}
	}
	return nil
}

// MarshalJSON implements [json.Marshaler].
func (t *Task) MarshalJSON() ([]byte, error) {
	type alias Task
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindTask, (*alias)(t)})
}

// UnmarshalJSON implements [json.Unmarshaler].
func (t *Task) UnmarshalJSON(data []byte) error {
	task, err := unmarshalWith(data, defaultParser.task)
	if err != nil {
		return err
	}
	*t = *task
	return nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	v, err := decodeAny(data)
	if err != nil {
		return err
	}
	o, err := asObject(v, "")
	if err != nil {
		return err
	}
	status, err := defaultParser.taskStatus(o)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseTask validates an untyped payload as a task with the default parser.
func ParseTask(v any) (*Task, error) {
	return defaultParser.ParseTask(v)
}

// ParseTask validates an untyped payload as a task.
func (p *Parser) ParseTask(v any) (*Task, error) {
	return p.task(v, "")
}

func (p *Parser) task(v any, path fieldPath) (*Task, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	if err := p.checkKind(o, KindTask); err != nil {
		return nil, err
	}
	return p.taskBody(o)
}

func (p *Parser) taskBody(o object) (*Task, error) {
	task := &Task{}
	var err error
	if task.ID, err = o.nonEmptyString("id"); err != nil {
		return nil, err
	}
	if task.ContextID, err = o.optionalString("contextId"); err != nil {
		return nil, err
	}
	status, err := o.child("status")
	if err != nil {
		return nil, err
	}
	if task.Status, err = p.taskStatus(status); err != nil {
		return nil, err
	}

	history, ok, err := o.array("history", false)
	if err != nil {
		return nil, err
	}
	if ok {
		task.History = make([]*Message, 0, len(history))
		for i, item := range history {
			msg, err := p.message(item, o.path.field("history").index(i))
			if err != nil {
				return nil, err
			}
			task.History = append(task.History, msg)
		}
	}

	artifacts, ok, err := o.array("artifacts", false)
	if err != nil {
		return nil, err
	}
	if ok {
		task.Artifacts = make([]*Artifact, 0, len(artifacts))
		for i, item := range artifacts {
			art, err := p.artifact(item, o.path.field("artifacts").index(i))
			if err != nil {
				return nil, err
			}
			task.Artifacts = append(task.Artifacts, art)
		}
	}

	if task.Metadata, err = o.optionalMap("metadata"); err != nil {
		return nil, err
	}
	return task, nil
}

func (p *Parser) taskStatus(o object) (TaskStatus, error) {
	state, err := o.requiredString("state")
	if err != nil {
		return TaskStatus{}, err
	}
	if !TaskState(state).IsKnown() {
		return TaskStatus{}, schemaErrorf(o.path.field("state"), "unknown task state %q", state)
	}

	status := TaskStatus{State: TaskState(state)}
	if v, ok := o.lookup("message"); ok {
		if status.Message, err = p.message(v, o.path.field("message")); err != nil {
			return TaskStatus{}, err
		}
	}
	if status.Timestamp, err = o.optionalString("timestamp"); err != nil {
		return TaskStatus{}, err
	}
	return status, nil
}
