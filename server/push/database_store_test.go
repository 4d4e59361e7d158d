// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package push

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	a2a "github.com/go-a2a/a2a-wire"
)

func TestDatabaseConfigStore(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "push.db")), &gorm.Config{
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

	s, err := NewDatabaseConfigStore(ctx, DatabaseConfigStoreConfig{DB: db, AutoMigrate: true})
	if err != nil {
		t.Fatalf("NewDatabaseConfigStore() error = %v", err)
	}

	first, err := s.Set(ctx, "t1", a2a.PushNotificationConfig{URL: "https://example.com/first"})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if first.ID != "t1" {
		t.Errorf("first config ID = %q, want the task ID", first.ID)
	}
	second, err := s.Set(ctx, "t1", a2a.PushNotificationConfig{
		ID:  "second",
		URL: "https://example.com/second",
		Authentication: &a2a.PushNotificationAuthenticationInfo{
			Schemes:     []string{"Bearer"},
			Credentials: "cred",
		},
	})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// repeating a config without ID updates the row in place
	first = a2a.PushNotificationConfig{ID: "t1", URL: "https://example.com/first", Token: "tok"}
	if _, err := s.Set(ctx, "t1", a2a.PushNotificationConfig{URL: first.URL, Token: first.Token}); err != nil {
		t.Fatalf("Set() upsert error = %v", err)
	}

	got, err := s.List(ctx, "t1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]a2a.PushNotificationConfig{first, second}, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	cfg, err := s.Get(ctx, "t1", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(first, cfg); diff != "" {
		t.Errorf("Get() without ID mismatch (-want +got):\n%s", diff)
	}
	if _, err := s.Get(ctx, "t1", "missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Get() missing error = %v, want %v", err, ErrConfigNotFound)
	}

	if err := s.Delete(ctx, "t1", "t1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "t1", "missing"); err != nil {
		t.Errorf("Delete() missing error = %v", err)
	}
	cfg, err = s.Get(ctx, "t1", "")
	if err != nil {
		t.Fatalf("Get() single config error = %v", err)
	}
	if diff := cmp.Diff(second, cfg); diff != "" {
		t.Errorf("Get() of the only config mismatch (-want +got):\n%s", diff)
	}

	empty, err := s.List(ctx, "t2")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() of unknown task = %#v, want empty non-nil", empty)
	}

	if _, err := s.Set(ctx, "t1", a2a.PushNotificationConfig{URL: "not-a-url"}); !errors.Is(err, a2a.ErrSchemaMismatch) {
		t.Errorf("Set() invalid error = %v, want %v", err, a2a.ErrSchemaMismatch)
	}
}
