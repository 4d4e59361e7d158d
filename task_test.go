// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
)

func userMessage(id, text string) *Message {
	return &Message{Role: RoleUser, MessageID: id, Parts: []Part{NewTextPart(text)}}
}

func TestTaskRoundTrip(t *testing.T) {
	t.Parallel()

	tests := map[string]*Task{
		"minimal": {
			ID:     "t1",
			Status: TaskStatus{State: TaskStateSubmitted},
		},
		"with context and timestamp": {
			ID:        "t1",
			ContextID: "c1",
			Status:    TaskStatus{State: TaskStateWorking, Timestamp: "2025-01-02T03:04:05Z"},
		},
		"with status message": {
			ID:     "t1",
			Status: TaskStatus{State: TaskStateInputRequired, Message: userMessage("m1", "which file?")},
		},
		"with history and artifacts": {
			ID:        "t1",
			ContextID: "c1",
			Status:    TaskStatus{State: TaskStateCompleted},
			History: []*Message{
				userMessage("m1", "hi"),
				{
					Role:             RoleAgent,
					MessageID:        "m2",
					TaskID:           "t1",
					ContextID:        "c1",
					Parts:            []Part{NewDataPart(map[string]any{"answer": 42.0})},
					Extensions:       []string{"https://example.com/ext"},
					ReferenceTaskIDs: []string{"t0"},
				},
			},
			Artifacts: []*Artifact{
				{
					ArtifactID:  "a1",
					Name:        "report",
					Description: "the report",
					Parts: []Part{
						NewTextPart("body"),
						NewFilePartWithURI("r.pdf", "application/pdf", "https://example.com/r.pdf"),
						NewFilePartWithBytes("", "", "AAAA"),
					},
					Metadata: map[string]any{"pages": 3.0},
				},
			},
			Metadata: map[string]any{"nested": map[string]any{"list": []any{"a", true, nil}}},
		},
		"with empty history": {
			ID:      "t1",
			Status:  TaskStatus{State: TaskStateRejected},
			History: []*Message{},
		},
	}

	for name, task := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if err := task.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			data, err := json.Marshal(task)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}

			var got Task
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(task, &got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTaskMarshalKind(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(&Task{ID: "t1", Status: TaskStatus{State: TaskStateWorking}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"task","id":"t1","status":{"state":"working"}}`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("json.Marshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTaskErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		wantKind ErrorKind
		wantPath string
	}{
		"missing kind": {
			input:    `{"id":"t1","status":{"state":"working"}}`,
			wantKind: SchemaMismatch,
			wantPath: "kind",
		},
		"unknown state": {
			input:    `{"kind":"task","id":"t1","status":{"state":"paused"}}`,
			wantKind: SchemaMismatch,
			wantPath: "status.state",
		},
		"empty parts in history": {
			input:    `{"kind":"task","id":"t1","status":{"state":"working"},"history":[{"kind":"message","role":"user","messageId":"m","parts":[]}]}`,
			wantKind: SchemaMismatch,
			wantPath: "history[0].parts",
		},
		"bad file in artifact": {
			input:    `{"kind":"task","id":"t1","status":{"state":"working"},"artifacts":[{"artifactId":"a","parts":[{"kind":"file","file":{}}]}]}`,
			wantKind: InvalidPart,
			wantPath: "artifacts[0].parts[0].file",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var task Task
			err := json.Unmarshal([]byte(tt.input), &task)
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("json.Unmarshal() error = %v, want *Error", err)
			}
			if e.Kind != tt.wantKind || e.Path != tt.wantPath {
				t.Errorf("json.Unmarshal() error = (%v, %q), want (%v, %q)", e.Kind, e.Path, tt.wantKind, tt.wantPath)
			}
		})
	}
}

func TestTaskWithHistoryLength(t *testing.T) {
	t.Parallel()

	task := &Task{
		ID:     "t1",
		Status: TaskStatus{State: TaskStateWorking},
		History: []*Message{
			userMessage("m1", "one"),
			userMessage("m2", "two"),
			userMessage("m3", "three"),
		},
	}

	intp := func(n int) *int { return &n }
	tests := map[string]struct {
		n    *int
		want []string
	}{
		"nil keeps everything": {n: nil, want: []string{"m1", "m2", "m3"}},
		"zero drops history":   {n: intp(0), want: []string{}},
		"one keeps the latest": {n: intp(1), want: []string{"m3"}},
		"more than available":  {n: intp(10), want: []string{"m1", "m2", "m3"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := task.WithHistoryLength(tt.n)
			ids := []string{}
			for _, m := range got.History {
				ids = append(ids, m.MessageID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("WithHistoryLength() mismatch (-want +got):\n%s", diff)
			}
			if len(task.History) != 3 {
				t.Errorf("WithHistoryLength() modified the receiver")
			}
		})
	}
}

func TestTaskStateTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[TaskState]bool{
		TaskStateCompleted: true,
		TaskStateCanceled:  true,
		TaskStateFailed:    true,
		TaskStateRejected:  true,
	}
	for _, s := range TaskStates {
		if got := s.IsTerminal(); got != terminal[s] {
			t.Errorf("%s.IsTerminal() = %t, want %t", s, got, terminal[s])
		}
		if !s.IsKnown() {
			t.Errorf("%s.IsKnown() = false", s)
		}
	}
	if TaskState("paused").IsKnown() {
		t.Error(`TaskState("paused").IsKnown() = true`)
	}
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	msg := userMessage("m1", "hi")
	msg.ContextID = "c1"
	task := NewTask(msg)
	if task.ID == "" {
		t.Error("NewTask() generated no task id")
	}
	if task.ContextID != "c1" {
		t.Errorf("NewTask() context = %q, want %q", task.ContextID, "c1")
	}
	if task.Status.State != TaskStateSubmitted {
		t.Errorf("NewTask() state = %q, want %q", task.Status.State, TaskStateSubmitted)
	}
	if len(task.History) != 1 || task.History[0] != msg {
		t.Errorf("NewTask() history = %v, want the initial message", task.History)
	}
}
