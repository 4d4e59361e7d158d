// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	a2a "github.com/go-a2a/a2a-wire"
)

func testTask(id, contextID string, state a2a.TaskState) *a2a.Task {
	return &a2a.Task{
		ID:        id,
		ContextID: contextID,
		Status:    a2a.TaskStatus{State: state},
		History: []*a2a.Message{
			{Role: a2a.RoleUser, MessageID: id + "-m1", Parts: []a2a.Part{a2a.NewTextPart("hello")}},
		},
		Artifacts: []*a2a.Artifact{
			{ArtifactID: id + "-a1", Parts: []a2a.Part{a2a.NewDataPart(map[string]any{"n": 1.0})}},
		},
		Metadata: map[string]any{"source": "test"},
	}
}

func taskIDs(tasks []*a2a.Task) []string {
	ids := []string{}
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

// testStore runs the behavior every Store implementation shares.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := t.Context()

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if _, err := store.Get(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want task not found", err)
	}
	if err := store.Delete(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("Delete(missing) error = %v, want task not found", err)
	}

	for _, task := range []*a2a.Task{
		testTask("t2", "c1", a2a.TaskStateWorking),
		testTask("t1", "c1", a2a.TaskStateSubmitted),
		testTask("t3", "c2", a2a.TaskStateCompleted),
	} {
		if err := store.Save(ctx, task); err != nil {
			t.Fatalf("Save(%s) error = %v", task.ID, err)
		}
	}

	want := testTask("t1", "c1", a2a.TaskStateSubmitted)
	got, err := store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	// Returned tasks are copies.
	got.Status.State = a2a.TaskStateFailed
	got.History[0].MessageID = "changed"
	again, err := store.Get(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, again); diff != "" {
		t.Errorf("stored task changed through a returned copy (-want +got):\n%s", diff)
	}

	updated := testTask("t1", "c1", a2a.TaskStateCompleted)
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}
	if got, _ := store.Get(ctx, "t1"); got.Status.State != a2a.TaskStateCompleted {
		t.Errorf("Get() after update state = %q, want %q", got.Status.State, a2a.TaskStateCompleted)
	}

	tests := map[string]struct {
		contextID     string
		limit, offset int
		want          []string
	}{
		"all":          {want: []string{"t1", "t2", "t3"}},
		"by context":   {contextID: "c1", want: []string{"t1", "t2"}},
		"limit":        {limit: 2, want: []string{"t1", "t2"}},
		"offset":       {offset: 1, want: []string{"t2", "t3"}},
		"past the end": {offset: 5, want: []string{}},
	}
	for name, tt := range tests {
		tasks, err := store.List(ctx, tt.contextID, tt.limit, tt.offset)
		if err != nil {
			t.Fatalf("List(%s) error = %v", name, err)
		}
		if diff := cmp.Diff(tt.want, taskIDs(tasks)); diff != "" {
			t.Errorf("List(%s) mismatch (-want +got):\n%s", name, diff)
		}
	}

	if n, err := store.Count(ctx, ""); err != nil || n != 3 {
		t.Errorf("Count() = %d, %v, want 3", n, err)
	}
	if n, err := store.Count(ctx, "c2"); err != nil || n != 1 {
		t.Errorf("Count(c2) = %d, %v, want 1", n, err)
	}

	if err := store.Delete(ctx, "t3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "t3"); !IsNotFound(err) {
		t.Errorf("Get() after Delete() error = %v, want task not found", err)
	}
	if n, _ := store.Count(ctx, "c2"); n != 0 {
		t.Errorf("Count(c2) after Delete() = %d, want 0", n)
	}

	var verr *ValidationError
	if err := store.Save(ctx, &a2a.Task{ID: "bad", Status: a2a.TaskStatus{State: "paused"}}); !errors.As(err, &verr) {
		t.Errorf("Save(invalid) error = %v, want *ValidationError", err)
	}
}

func TestInMemoryStore(t *testing.T) {
	t.Parallel()

	testStore(t, NewInMemoryStore())
}

func TestCachedStore(t *testing.T) {
	t.Parallel()

	backing := NewInMemoryStore()
	store, err := NewCachedStore(backing, CacheConfig{MaxCost: 100})
	if err != nil {
		t.Fatalf("NewCachedStore() error = %v", err)
	}
	testStore(t, store)

	// A deletion through the cache is visible to later reads.
	ctx := t.Context()
	if err := store.Save(ctx, testTask("t9", "c9", a2a.TaskStateWorking)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "t9"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "t9"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "t9"); !IsNotFound(err) {
		t.Errorf("Get() after Delete() error = %v, want task not found", err)
	}
	if err := store.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	_, client := newRedisClient(t)
	store, err := NewRedisStore(client, WithRedisPrefix("a2a-test:"))
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })

	testStore(t, store)
}

func TestRedisStoreTTL(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	mr, client := newRedisClient(t)
	store, err := NewRedisStore(client, WithRedisTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })

	if err := store.Save(ctx, testTask("old", "c1", a2a.TaskStateCompleted)); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(30 * time.Second)
	if err := store.Save(ctx, testTask("new", "c1", a2a.TaskStateWorking)); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(45 * time.Second)

	if _, err := store.Get(ctx, "old"); !IsNotFound(err) {
		t.Errorf("Get(expired) error = %v, want task not found", err)
	}
	for _, contextID := range []string{"", "c1"} {
		if n, err := store.Count(ctx, contextID); err != nil || n != 1 {
			t.Errorf("Count(%q) = %d, %v, want 1", contextID, n, err)
		}
		tasks, err := store.List(ctx, contextID, 0, 0)
		if err != nil {
			t.Fatalf("List(%q) error = %v", contextID, err)
		}
		if diff := cmp.Diff([]string{"new"}, taskIDs(tasks)); diff != "" {
			t.Errorf("List(%q) mismatch (-want +got):\n%s", contextID, diff)
		}
	}
	if ids, _ := mr.Members(store.allKey()); len(ids) != 1 {
		t.Errorf("index members = %v, want the expired task pruned", ids)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "a2a.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestDatabaseStore(t *testing.T) {
	t.Parallel()

	store, err := NewDatabaseStore(DatabaseStoreConfig{DB: newTestDB(t), AutoMigrate: true})
	if err != nil {
		t.Fatalf("NewDatabaseStore() error = %v", err)
	}
	testStore(t, store)

	ctx := t.Context()
	working, err := store.ListByState(ctx, a2a.TaskStateWorking)
	if err != nil {
		t.Fatalf("ListByState() error = %v", err)
	}
	if diff := cmp.Diff([]string{"t2"}, taskIDs(working)); diff != "" {
		t.Errorf("ListByState() mismatch (-want +got):\n%s", diff)
	}

	// a failed transaction leaves no trace
	errRollback := errors.New("rollback")
	err = store.Transaction(ctx, func(tx Store) error {
		if err := tx.Save(ctx, testTask("t7", "c7", a2a.TaskStateWorking)); err != nil {
			return err
		}
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("Transaction() error = %v, want %v", err, errRollback)
	}
	if _, err := store.Get(ctx, "t7"); !IsNotFound(err) {
		t.Errorf("Get() after rollback error = %v, want task not found", err)
	}
}

func TestNewStoreErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewCachedStore(nil, CacheConfig{}); err == nil {
		t.Error("NewCachedStore(nil) error = nil")
	}
	if _, err := NewRedisStore(nil); err == nil {
		t.Error("NewRedisStore(nil) error = nil")
	}
	if _, err := NewDatabaseStore(DatabaseStoreConfig{}); err == nil {
		t.Error("NewDatabaseStore() without DB error = nil")
	}
}
