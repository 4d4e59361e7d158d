// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-wire"
)

func statusEvent(state a2a.TaskState, final bool) *a2a.TaskStatusUpdateEvent {
	return &a2a.TaskStatusUpdateEvent{
		TaskID:    "t1",
		ContextID: "c1",
		Status:    a2a.TaskStatus{State: state},
		Final:     final,
	}
}

func TestQueueBroadcast(t *testing.T) {
	t.Parallel()

	q := NewQueue(WithMaxQueueSize(4))
	first := q.Subscribe()
	second := q.Subscribe()

	events := []a2a.StreamResult{
		&a2a.Task{ID: "t1", Status: a2a.TaskStatus{State: a2a.TaskStateSubmitted}},
		statusEvent(a2a.TaskStateWorking, false),
		statusEvent(a2a.TaskStateCompleted, true),
	}
	for _, ev := range events {
		if err := q.Publish(t.Context(), ev); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for name, sub := range map[string]*Subscription{"first": first, "second": second} {
		var got []a2a.StreamResult
		for r := range sub.All(t.Context()) {
			got = append(got, r)
		}
		if diff := cmp.Diff(events, got); diff != "" {
			t.Errorf("%s subscription mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestQueueClosed(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	q.Close()

	if err := q.Publish(t.Context(), statusEvent(a2a.TaskStateWorking, false)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Publish() error = %v, want %v", err, ErrQueueClosed)
	}
	if _, err := q.Tap(); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Tap() error = %v, want %v", err, ErrQueueClosed)
	}
	if _, err := q.Subscribe().Next(t.Context()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Next() error = %v, want %v", err, ErrQueueClosed)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := q.Publish(t.Context(), nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Publish(nil) error = %v, want %v", err, ErrInvalidEvent)
	}
}

func TestQueueTapSeesOnlyLaterEvents(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	if err := q.Publish(t.Context(), statusEvent(a2a.TaskStateWorking, false)); err != nil {
		t.Fatal(err)
	}
	sub, err := q.Tap()
	if err != nil {
		t.Fatalf("Tap() error = %v", err)
	}
	want := statusEvent(a2a.TaskStateCompleted, true)
	if err := q.Publish(t.Context(), want); err != nil {
		t.Fatal(err)
	}

	got, err := sub.Next(t.Context())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got != want {
		t.Errorf("Next() = %v, want %v", got, want)
	}
}

func TestQueueTapFromCountsEarlierEvents(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	for range 2 {
		if err := q.Publish(t.Context(), statusEvent(a2a.TaskStateWorking, false)); err != nil {
			t.Fatal(err)
		}
	}
	sub, published, err := q.TapFrom()
	if err != nil {
		t.Fatalf("TapFrom() error = %v", err)
	}
	if published != 2 {
		t.Errorf("TapFrom() published = %d, want 2", published)
	}
	if err := q.Publish(t.Context(), statusEvent(a2a.TaskStateCompleted, true)); err != nil {
		t.Fatal(err)
	}
	if q.Published() != 3 {
		t.Errorf("Published() = %d, want 3", q.Published())
	}
	if got, err := sub.Next(t.Context()); err != nil || got.(*a2a.TaskStatusUpdateEvent).Status.State != a2a.TaskStateCompleted {
		t.Errorf("Next() = %v, %v; want the completed status", got, err)
	}

	q.Close()
	if _, _, err := q.TapFrom(); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("TapFrom() after Close() error = %v, want %v", err, ErrQueueClosed)
	}
}

func TestQueuePublishBlocksOnFullSubscriber(t *testing.T) {
	t.Parallel()

	q := NewQueue(WithMaxQueueSize(1))
	sub := q.Subscribe()
	if err := q.Publish(t.Context(), statusEvent(a2a.TaskStateWorking, false)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	if err := q.Publish(ctx, statusEvent(a2a.TaskStateWorking, false)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Publish() on a full subscriber error = %v, want %v", err, context.DeadlineExceeded)
	}

	// Closing the subscription releases the publisher.
	sub.Close()
	if err := q.Publish(t.Context(), statusEvent(a2a.TaskStateWorking, false)); err != nil {
		t.Errorf("Publish() after unsubscribe error = %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueueConcurrentSubscribers(t *testing.T) {
	t.Parallel()

	const n = 50
	q := NewQueue(WithMaxQueueSize(8))
	subs := make([]*Subscription, 4)
	for i := range subs {
		subs[i] = q.Subscribe()
	}

	var wg sync.WaitGroup
	counts := make([]int, len(subs))
	for i, sub := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range sub.All(context.Background()) {
				counts[i]++
			}
		}()
	}

	for range n {
		if err := q.Publish(t.Context(), statusEvent(a2a.TaskStateWorking, false)); err != nil {
			t.Fatal(err)
		}
	}
	q.Close()
	wg.Wait()

	for i, c := range counts {
		if c != n {
			t.Errorf("subscriber %d received %d events, want %d", i, c, n)
		}
	}
}

func TestManager(t *testing.T) {
	t.Parallel()

	m := NewManager(WithDefaultMaxQueueSize(4))
	q, err := m.Create("t1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := m.Create("t1"); !errors.Is(err, &TaskQueueExistsError{}) {
		t.Errorf("Create() duplicate error = %v, want TaskQueueExistsError", err)
	}
	if m.Get("t1") != q {
		t.Error("Get() did not return the created queue")
	}
	if _, err := m.Tap("t2"); !errors.Is(err, &NoTaskQueueError{}) {
		t.Errorf("Tap() unknown error = %v, want NoTaskQueueError", err)
	}

	sub, err := m.Tap("t1")
	if err != nil {
		t.Fatalf("Tap() error = %v", err)
	}
	m.Create("t0")
	if diff := cmp.Diff([]string{"t0", "t1"}, m.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if err := m.Close("t1"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := sub.Next(t.Context()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Next() after Close() error = %v, want %v", err, ErrQueueClosed)
	}
	if err := m.Close("t1"); !errors.Is(err, &NoTaskQueueError{}) {
		t.Errorf("second Close() error = %v, want NoTaskQueueError", err)
	}

	m.CloseAll()
	if m.Count() != 0 {
		t.Errorf("Count() = %d after CloseAll(), want 0", m.Count())
	}
}
