// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func statusEvent(taskID string, state TaskState, final bool) *TaskStatusUpdateEvent {
	return &TaskStatusUpdateEvent{
		TaskID:    taskID,
		ContextID: "c1",
		Status:    TaskStatus{State: state},
		Final:     final,
	}
}

func artifactEvent(taskID, artifactID, text string, appendParts bool) *TaskArtifactUpdateEvent {
	return &TaskArtifactUpdateEvent{
		TaskID:    taskID,
		ContextID: "c1",
		Artifact:  &Artifact{ArtifactID: artifactID, Parts: []Part{NewTextPart(text)}},
		Append:    appendParts,
	}
}

func TestFoldHelloWorld(t *testing.T) {
	t.Parallel()

	initial := &Task{ID: "t1", ContextID: "c1", Status: TaskStatus{State: TaskStateSubmitted}}
	events := []Event{
		statusEvent("t1", TaskStateWorking, false),
		artifactEvent("t1", "a1", "Hello", false),
		artifactEvent("t1", "a1", " world", true),
		statusEvent("t1", TaskStateCompleted, true),
	}

	got, err := Fold(initial, slices.Values(events))
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}

	want := &Task{
		ID:        "t1",
		ContextID: "c1",
		Status:    TaskStatus{State: TaskStateCompleted},
		Artifacts: []*Artifact{
			{ArtifactID: "a1", Parts: []Part{NewTextPart("Hello"), NewTextPart(" world")}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fold() mismatch (-want +got):\n%s", diff)
	}
	if initial.Status.State != TaskStateSubmitted {
		t.Errorf("Fold() modified the initial task")
	}
}

func TestFoldIdempotence(t *testing.T) {
	t.Parallel()

	base := &Task{
		ID:        "t1",
		ContextID: "c1",
		Status:    TaskStatus{State: TaskStateWorking},
		Artifacts: []*Artifact{{ArtifactID: "a1", Parts: []Part{NewTextPart("old")}}},
	}
	withMessage := statusEvent("t1", TaskStateInputRequired, false)
	withMessage.Status.Message = &Message{Role: RoleAgent, MessageID: "m1", Parts: []Part{NewTextPart("more?")}}

	tests := map[string]Event{
		"status update":              statusEvent("t1", TaskStateWorking, false),
		"status update with message": withMessage,
		"replace existing artifact":  artifactEvent("t1", "a1", "new", false),
		"add new artifact":           artifactEvent("t1", "a2", "other", false),
	}

	for name, ev := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			once, err := ApplyEvent(base, ev)
			if err != nil {
				t.Fatalf("ApplyEvent() error = %v", err)
			}
			twice, err := ApplyEvent(once, ev)
			if err != nil {
				t.Fatalf("ApplyEvent() second application error = %v", err)
			}
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("replay changed the projection (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestFoldAppendDuplicates(t *testing.T) {
	t.Parallel()

	p := NewProjector(&Task{
		ID:        "t1",
		Status:    TaskStatus{State: TaskStateWorking},
		Artifacts: []*Artifact{{ArtifactID: "a1", Parts: []Part{NewTextPart("a")}}},
	})
	ev := artifactEvent("t1", "a1", "b", true)
	for range 2 {
		if err := p.Apply(ev); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	want := []Part{NewTextPart("a"), NewTextPart("b"), NewTextPart("b")}
	if diff := cmp.Diff(want, p.Task().Artifact("a1").Parts); diff != "" {
		t.Errorf("parts mismatch (-want +got):\n%s", diff)
	}
}

func TestFoldProtocolViolations(t *testing.T) {
	t.Parallel()

	working := &Task{ID: "t1", ContextID: "c1", Status: TaskStatus{State: TaskStateWorking}}
	completed := &Task{ID: "t1", ContextID: "c1", Status: TaskStatus{State: TaskStateCompleted}}

	tests := map[string]struct {
		task   *Task
		events []Event
	}{
		"append to unknown artifact": {
			task:   working,
			events: []Event{artifactEvent("t1", "missing", "x", true)},
		},
		"append on empty projection": {
			events: []Event{artifactEvent("t1", "a1", "x", true)},
		},
		"status after final": {
			task: working,
			events: []Event{
				statusEvent("t1", TaskStateCompleted, true),
				statusEvent("t1", TaskStateWorking, false),
			},
		},
		"artifact after final": {
			task: working,
			events: []Event{
				statusEvent("t1", TaskStateFailed, true),
				artifactEvent("t1", "a1", "late", false),
			},
		},
		"frame after terminal state without final flag": {
			task: working,
			events: []Event{
				statusEvent("t1", TaskStateCanceled, false),
				statusEvent("t1", TaskStateCanceled, false),
			},
		},
		"frame for an already terminal task": {
			task:   completed,
			events: []Event{statusEvent("t1", TaskStateWorking, false)},
		},
		"frame for another task": {
			task:   working,
			events: []Event{statusEvent("t2", TaskStateWorking, false)},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := NewProjector(tt.task)
			var err error
			for _, ev := range tt.events {
				if err = p.Apply(ev); err != nil {
					break
				}
			}
			if !errors.Is(err, ErrProtocolViolation) {
				t.Fatalf("Apply() error = %v, want %v", err, ErrProtocolViolation)
			}
			if got := ToJSONRPCError(err).Code; got != InvalidAgentResponseErrorCode {
				t.Errorf("ToJSONRPCError().Code = %d, want %d", got, InvalidAgentResponseErrorCode)
			}
		})
	}
}

func TestProjectorErrorLeavesProjectionUnchanged(t *testing.T) {
	t.Parallel()

	p := NewProjector(&Task{ID: "t1", Status: TaskStatus{State: TaskStateWorking}})
	before := p.Task()
	if err := p.Apply(artifactEvent("t1", "nope", "x", true)); err == nil {
		t.Fatal("Apply() error = nil, want protocol violation")
	}
	if diff := cmp.Diff(before, p.Task()); diff != "" {
		t.Errorf("projection changed after error (-before +after):\n%s", diff)
	}
}

func TestProjectorEmptyProjection(t *testing.T) {
	t.Parallel()

	p := NewProjector(nil)
	if p.Task() != nil {
		t.Fatalf("Task() = %v, want nil", p.Task())
	}
	if err := p.Apply(artifactEvent("t9", "a1", "x", false)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	got := p.Task()
	if got.ID != "t9" || got.ContextID != "c1" || got.Status.State != TaskStateSubmitted {
		t.Errorf("Task() = %+v, want adopted identifiers in state submitted", got)
	}
}

func TestProjectorStatusHistory(t *testing.T) {
	t.Parallel()

	p := NewProjector(&Task{ID: "t1", Status: TaskStatus{State: TaskStateSubmitted}})
	for i, id := range []string{"m1", "m2"} {
		ev := statusEvent("t1", TaskStateWorking, false)
		ev.Status.Message = &Message{Role: RoleAgent, MessageID: id, Parts: []Part{NewTextPart("step")}}
		ev.Status.Timestamp = []string{"2025-01-01T00:00:00Z", "2025-01-01T00:00:01Z"}[i]
		if err := p.Apply(ev); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	got := p.Task()
	if len(got.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(got.History))
	}
	if got.Status.Timestamp != "2025-01-01T00:00:01Z" {
		t.Errorf("Status.Timestamp = %q, status was not replaced wholesale", got.Status.Timestamp)
	}
}

func TestProjectorApplyResult(t *testing.T) {
	t.Parallel()

	p := NewProjector(nil)
	results := []StreamResult{
		&Task{ID: "t1", ContextID: "c1", Status: TaskStatus{State: TaskStateSubmitted}},
		statusEvent("t1", TaskStateWorking, false),
		artifactEvent("t1", "a1", "done", false),
		statusEvent("t1", TaskStateCompleted, true),
	}
	for _, r := range results {
		if err := p.ApplyResult(r); err != nil {
			t.Fatalf("ApplyResult(%v) error = %v", r.GetKind(), err)
		}
	}
	if !p.Final() {
		t.Error("Final() = false after a final frame")
	}
	if err := p.ApplyResult(&Task{ID: "t1", Status: TaskStatus{State: TaskStateWorking}}); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("ApplyResult() after final error = %v, want %v", err, ErrProtocolViolation)
	}

	m := NewProjector(nil)
	if err := m.ApplyResult(&Message{Role: RoleAgent, MessageID: "m", Parts: []Part{NewTextPart("hi")}}); err != nil {
		t.Fatalf("ApplyResult(message) error = %v", err)
	}
	if !m.Final() {
		t.Error("Final() = false after a message result")
	}
}

func TestIsFinal(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ev   Event
		want bool
	}{
		"working":             {ev: statusEvent("t", TaskStateWorking, false), want: false},
		"final flag":          {ev: statusEvent("t", TaskStateInputRequired, true), want: true},
		"terminal state":      {ev: statusEvent("t", TaskStateFailed, false), want: true},
		"artifact last chunk": {ev: &TaskArtifactUpdateEvent{TaskID: "t", LastChunk: true}, want: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := IsFinal(tt.ev); got != tt.want {
				t.Errorf("IsFinal() = %t, want %t", got, tt.want)
			}
		})
	}
}
