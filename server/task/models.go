// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"gorm.io/gorm"

	a2a "github.com/go-a2a/a2a-wire"
)

// DefaultTableName is the table used by [DatabaseStore] when none is configured.
const DefaultTableName = "tasks"

// JSONColumn stores a value of type T as a JSON column.
//
// Nil slices and maps are stored as SQL NULL so that absent and empty
// collections survive a round trip.
type JSONColumn[T any] struct {
	V T
}

// NewJSONColumn wraps v.
func NewJSONColumn[T any](v T) JSONColumn[T] {
	return JSONColumn[T]{V: v}
}

// Value implements [driver.Valuer].
func (c JSONColumn[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(c.V, json.FormatNilSliceAsNull(true), json.FormatNilMapAsNull(true))
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

// Scan implements [database/sql.Scanner].
func (c *JSONColumn[T]) Scan(value any) error {
	var zero T
	var data []byte
	switch v := value.(type) {
	case nil:
		c.V = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, c)
	}

	v := zero
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("cannot unmarshal %T: %w", c, err)
	}
	c.V = v

	return nil
}

// TaskModel is the row of a task.
//
// State duplicates Status.State so that tasks can be filtered without JSON functions.
type TaskModel struct {
	ID        string                      `gorm:"primaryKey;size:64"`
	ContextID string                      `gorm:"size:64;index"`
	Kind      string                      `gorm:"size:16;default:task;not null"`
	State     string                      `gorm:"size:32;index"`
	Status    JSONColumn[a2a.TaskStatus]  `gorm:"type:json"`
	Artifacts JSONColumn[[]*a2a.Artifact] `gorm:"type:json"`
	History   JSONColumn[[]*a2a.Message]  `gorm:"type:json"`
	Metadata  JSONColumn[map[string]any]  `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the default table name of the TaskModel.
func (TaskModel) TableName() string {
	return DefaultTableName
}

// String returns a string representation of the TaskModel.
func (m *TaskModel) String() string {
	return fmt.Sprintf("TaskModel{ID: %s, ContextID: %s, State: %s}", m.ID, m.ContextID, m.State)
}

// NewTaskModel converts task into its row.
func NewTaskModel(task *a2a.Task) (*TaskModel, error) {
	if task == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("task is invalid: %w", err)
	}

	return &TaskModel{
		ID:        task.ID,
		ContextID: task.ContextID,
		Kind:      string(a2a.KindTask),
		State:     string(task.Status.State),
		Status:    NewJSONColumn(task.Status),
		Artifacts: NewJSONColumn(task.Artifacts),
		History:   NewJSONColumn(task.History),
		Metadata:  NewJSONColumn(task.Metadata),
	}, nil
}

// ToTask converts the row back into a task.
func (m *TaskModel) ToTask() (*a2a.Task, error) {
	task := &a2a.Task{
		ID:        m.ID,
		ContextID: m.ContextID,
		Status:    m.Status.V,
		History:   m.History.V,
		Artifacts: m.Artifacts.V,
		Metadata:  m.Metadata.V,
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("task model is invalid: %w", err)
	}
	return task, nil
}

// BeforeSave is a GORM hook keeping State in sync with Status.
func (m *TaskModel) BeforeSave(tx *gorm.DB) error {
	if m.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	m.State = string(m.Status.V.State)
	return nil
}
