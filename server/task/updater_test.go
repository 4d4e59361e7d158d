// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/server/event"
)

func TestUpdater(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	q := event.NewQueue()
	sub := q.Subscribe()

	u, err := NewUpdater(q, "t1", "c1")
	if err != nil {
		t.Fatalf("NewUpdater() error = %v", err)
	}
	if err := u.StartWork(ctx, nil); err != nil {
		t.Fatalf("StartWork() error = %v", err)
	}
	artifactID, err := u.AddArtifact(ctx, []a2a.Part{a2a.NewTextPart("Hello")}, ArtifactOptions{Name: "greeting"})
	if err != nil {
		t.Fatalf("AddArtifact() error = %v", err)
	}
	if _, err := u.AddArtifact(ctx, []a2a.Part{a2a.NewTextPart(" world")}, ArtifactOptions{ArtifactID: artifactID, Append: true, LastChunk: true}); err != nil {
		t.Fatalf("AddArtifact(append) error = %v", err)
	}
	if err := u.Complete(ctx, u.NewAgentMessage([]a2a.Part{a2a.NewTextPart("done")})); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !u.IsTerminal() {
		t.Error("IsTerminal() = false after Complete()")
	}

	var nerr *NotUpdatableError
	if err := u.StartWork(ctx, nil); !errors.As(err, &nerr) || nerr.State != a2a.TaskStateCompleted {
		t.Errorf("StartWork() after Complete() error = %v, want *NotUpdatableError in state completed", err)
	}
	if _, err := u.AddArtifact(ctx, []a2a.Part{a2a.NewTextPart("late")}, ArtifactOptions{}); !errors.As(err, &nerr) {
		t.Errorf("AddArtifact() after Complete() error = %v, want *NotUpdatableError", err)
	}
	q.Close()

	var events []a2a.Event
	for r := range sub.All(ctx) {
		events = append(events, r.(a2a.Event))
	}
	if len(events) != 4 {
		t.Fatalf("published %d events, want 4", len(events))
	}

	got, err := a2a.Fold(&a2a.Task{ID: "t1", ContextID: "c1", Status: a2a.TaskStatus{State: a2a.TaskStateSubmitted}}, slices.Values(events))
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	if got.Status.State != a2a.TaskStateCompleted {
		t.Errorf("folded state = %q, want %q", got.Status.State, a2a.TaskStateCompleted)
	}
	want := []a2a.Part{a2a.NewTextPart("Hello"), a2a.NewTextPart(" world")}
	if diff := cmp.Diff(want, got.Artifact(artifactID).Parts); diff != "" {
		t.Errorf("artifact parts mismatch (-want +got):\n%s", diff)
	}
	if msg := got.Status.Message; msg == nil || msg.TaskID != "t1" || msg.ContextID != "c1" {
		t.Errorf("status message = %+v, want an agent message bound to the task", msg)
	}
}

func TestUpdaterTerminalStateIsFinal(t *testing.T) {
	t.Parallel()

	q := event.NewQueue()
	sub := q.Subscribe()
	u, _ := NewUpdater(q, "t1", "c1")

	if err := u.UpdateStatus(t.Context(), a2a.TaskStateFailed, nil, false); err != nil {
		t.Fatal(err)
	}
	r, err := sub.Next(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if ev := r.(*a2a.TaskStatusUpdateEvent); !ev.Final {
		t.Error("status update to a terminal state was not final")
	}
}

func TestUpdaterInterruptedIsNotTerminal(t *testing.T) {
	t.Parallel()

	u, _ := NewUpdater(event.NewQueue(), "t1", "c1")
	if err := u.RequiresInput(t.Context(), nil, false); err != nil {
		t.Fatal(err)
	}
	if u.IsTerminal() {
		t.Error("IsTerminal() = true after a non-final input-required update")
	}
}

func TestUpdaterErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewUpdater(nil, "t1", "c1"); err == nil {
		t.Error("NewUpdater(nil queue) error = nil")
	}
	if _, err := NewUpdater(event.NewQueue(), "", "c1"); err == nil {
		t.Error("NewUpdater(empty task ID) error = nil")
	}

	q := event.NewQueue()
	q.Close()
	u, _ := NewUpdater(q, "t1", "c1")
	var uerr *UpdaterError
	if err := u.StartWork(t.Context(), nil); !errors.As(err, &uerr) || !errors.Is(err, event.ErrQueueClosed) {
		t.Errorf("StartWork() on a closed queue error = %v, want *UpdaterError wrapping %v", err, event.ErrQueueClosed)
	}

	u, _ = NewUpdater(event.NewQueue(), "t1", "c1")
	var verr *ValidationError
	if _, err := u.AddArtifact(t.Context(), nil, ArtifactOptions{}); !errors.As(err, &verr) {
		t.Errorf("AddArtifact(no parts) error = %v, want *ValidationError", err)
	}
}
