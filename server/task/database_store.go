// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	a2a "github.com/go-a2a/a2a-wire"
)

// DatabaseStore is a [Store] backed by GORM. The caller supplies the dialector.
type DatabaseStore struct {
	db          *gorm.DB
	tableName   string
	autoMigrate bool
}

var _ Store = (*DatabaseStore)(nil)

// DatabaseStoreConfig holds configuration for DatabaseStore.
type DatabaseStoreConfig struct {
	DB *gorm.DB
	// TableName defaults to [DefaultTableName].
	TableName string
	// AutoMigrate creates or migrates the table in Initialize.
	AutoMigrate bool
}

// NewDatabaseStore creates a new DatabaseStore.
func NewDatabaseStore(config DatabaseStoreConfig) (*DatabaseStore, error) {
	if config.DB == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	tableName := config.TableName
	if tableName == "" {
		tableName = DefaultTableName
	}

	return &DatabaseStore{
		db:          config.DB,
		tableName:   tableName,
		autoMigrate: config.AutoMigrate,
	}, nil
}

func (s *DatabaseStore) table(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.tableName)
}

// Save upserts task.
func (s *DatabaseStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return NewValidationError(task.ID, err)
	}

	model, err := NewTaskModel(task)
	if err != nil {
		return NewStoreError("save", task.ID, err)
	}

	err = s.table(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"context_id", "state", "status", "artifacts", "history", "metadata", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return NewStoreError("save", task.ID, err)
	}

	return nil
}

// Get retrieves a task by its ID.
func (s *DatabaseStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	var model TaskModel
	if err := s.table(ctx).Where("id = ?", taskID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a2a.NewTaskNotFoundError(taskID)
		}
		return nil, NewStoreError("get", taskID, err)
	}

	task, err := model.ToTask()
	if err != nil {
		return nil, NewStoreError("get", taskID, err)
	}

	return task, nil
}

// Delete removes a task.
func (s *DatabaseStore) Delete(ctx context.Context, taskID string) error {
	result := s.table(ctx).Where("id = ?", taskID).Delete(&TaskModel{})
	if result.Error != nil {
		return NewStoreError("delete", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return a2a.NewTaskNotFoundError(taskID)
	}

	return nil
}

// List retrieves tasks ordered by ID.
func (s *DatabaseStore) List(ctx context.Context, contextID string, limit, offset int) ([]*a2a.Task, error) {
	db := s.table(ctx)
	if contextID != "" {
		db = db.Where("context_id = ?", contextID)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var models []TaskModel
	if err := db.Order("id").Find(&models).Error; err != nil {
		return nil, NewStoreError("list", "", err)
	}

	return toTasks("list", models)
}

// ListByState retrieves the tasks currently in state.
func (s *DatabaseStore) ListByState(ctx context.Context, state a2a.TaskState) ([]*a2a.Task, error) {
	var models []TaskModel
	if err := s.table(ctx).Where("state = ?", string(state)).Order("id").Find(&models).Error; err != nil {
		return nil, NewStoreError("list_by_state", "", err)
	}

	return toTasks("list_by_state", models)
}

func toTasks(operation string, models []TaskModel) ([]*a2a.Task, error) {
	tasks := make([]*a2a.Task, len(models))
	for i := range models {
		task, err := models[i].ToTask()
		if err != nil {
			return nil, NewStoreError(operation, models[i].ID, fmt.Errorf("failed to convert model to task: %w", err))
		}
		tasks[i] = task
	}
	return tasks, nil
}

// Count returns the number of stored tasks.
func (s *DatabaseStore) Count(ctx context.Context, contextID string) (int64, error) {
	query := s.table(ctx).Model(&TaskModel{})
	if contextID != "" {
		query = query.Where("context_id = ?", contextID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, NewStoreError("count", "", err)
	}

	return count, nil
}

// Initialize migrates the table when AutoMigrate is set.
func (s *DatabaseStore) Initialize(ctx context.Context) error {
	if !s.autoMigrate {
		return nil
	}
	if err := s.table(ctx).AutoMigrate(&TaskModel{}); err != nil {
		return NewStoreError("initialize", "", err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (s *DatabaseStore) Close(ctx context.Context) error {
	return nil
}

// Transaction runs fn with a store bound to a database transaction.
func (s *DatabaseStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DatabaseStore{
			db:          tx,
			tableName:   s.tableName,
			autoMigrate: s.autoMigrate,
		})
	})
}
