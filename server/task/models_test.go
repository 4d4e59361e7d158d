// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-wire"
)

func TestJSONColumn(t *testing.T) {
	t.Parallel()

	t.Run("nil collections are stored as NULL", func(t *testing.T) {
		t.Parallel()

		for name, value := range map[string]valuerFunc{
			"history":  valuer(NewJSONColumn[[]*a2a.Message](nil)),
			"metadata": valuer(NewJSONColumn[map[string]any](nil)),
		} {
			got, err := value()
			if err != nil {
				t.Fatalf("%s Value() error = %v", name, err)
			}
			if got != nil {
				t.Errorf("%s Value() = %s, want nil", name, got)
			}
		}
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		col := NewJSONColumn(a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: "2025-01-01T00:00:00Z"})
		v, err := col.Value()
		if err != nil {
			t.Fatalf("Value() error = %v", err)
		}
		if diff := cmp.Diff(`{"state":"working","timestamp":"2025-01-01T00:00:00Z"}`, string(v.([]byte))); diff != "" {
			t.Errorf("Value() mismatch (-want +got):\n%s", diff)
		}

		var got JSONColumn[a2a.TaskStatus]
		if err := got.Scan(string(v.([]byte))); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if diff := cmp.Diff(col, got); diff != "" {
			t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("scan errors", func(t *testing.T) {
		t.Parallel()

		var col JSONColumn[a2a.TaskStatus]
		if err := col.Scan(42); err == nil {
			t.Error("Scan(int) error = nil")
		}
		if err := col.Scan([]byte(`{"state":"paused"}`)); err == nil {
			t.Error("Scan(unknown state) error = nil")
		}
		if err := col.Scan(nil); err != nil || col.V.State != "" {
			t.Errorf("Scan(nil) = %v, %v, want zero value", col.V, err)
		}
	})
}

type valuerFunc func() (any, error)

func valuer[T any](c JSONColumn[T]) valuerFunc {
	return func() (any, error) { return c.Value() }
}

func TestTaskModelRoundTrip(t *testing.T) {
	t.Parallel()

	tests := map[string]*a2a.Task{
		"full":          testTask("t1", "c1", a2a.TaskStateInputRequired),
		"minimal":       {ID: "t2", Status: a2a.TaskStatus{State: a2a.TaskStateSubmitted}},
		"empty history": {ID: "t3", Status: a2a.TaskStatus{State: a2a.TaskStateWorking}, History: []*a2a.Message{}},
	}

	for name, task := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			model, err := NewTaskModel(task)
			if err != nil {
				t.Fatalf("NewTaskModel() error = %v", err)
			}
			if model.State != string(task.Status.State) {
				t.Errorf("State = %q, want %q", model.State, task.Status.State)
			}

			// Simulate a database round trip through the column values.
			var scanned TaskModel
			scanned.ID, scanned.ContextID = model.ID, model.ContextID
			for _, c := range []struct {
				value valuerFunc
				scan  func(any) error
			}{
				{valuer(model.Status), scanned.Status.Scan},
				{valuer(model.Artifacts), scanned.Artifacts.Scan},
				{valuer(model.History), scanned.History.Scan},
				{valuer(model.Metadata), scanned.Metadata.Scan},
			} {
				v, err := c.value()
				if err != nil {
					t.Fatalf("Value() error = %v", err)
				}
				if err := c.scan(v); err != nil {
					t.Fatalf("Scan() error = %v", err)
				}
			}

			got, err := scanned.ToTask()
			if err != nil {
				t.Fatalf("ToTask() error = %v", err)
			}
			if diff := cmp.Diff(task, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewTaskModelInvalid(t *testing.T) {
	t.Parallel()

	if _, err := NewTaskModel(nil); err == nil {
		t.Error("NewTaskModel(nil) error = nil")
	}
	if _, err := NewTaskModel(&a2a.Task{Status: a2a.TaskStatus{State: a2a.TaskStateWorking}}); err == nil {
		t.Error("NewTaskModel() without ID error = nil")
	}
}
