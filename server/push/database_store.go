// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/server/task"
)

// DefaultTableName is the table used by [DatabaseConfigStore] when none is configured.
const DefaultTableName = "push_notification_configs"

// ConfigModel is the row of one push notification config.
type ConfigModel struct {
	TaskID         string `gorm:"primaryKey;size:64"`
	ConfigID       string `gorm:"primaryKey;size:64"`
	URL            string `gorm:"not null"`
	Token          string
	Authentication task.JSONColumn[*a2a.PushNotificationAuthenticationInfo] `gorm:"type:json"`
	CreatedAt      time.Time                                               `gorm:"index"`
	UpdatedAt      time.Time
}

// TableName returns the default table name of the ConfigModel.
func (ConfigModel) TableName() string {
	return DefaultTableName
}

func newConfigModel(taskID string, cfg a2a.PushNotificationConfig) *ConfigModel {
	return &ConfigModel{
		TaskID:         taskID,
		ConfigID:       cfg.ID,
		URL:            cfg.URL,
		Token:          cfg.Token,
		Authentication: task.NewJSONColumn(cfg.Authentication),
	}
}

func (m *ConfigModel) config() a2a.PushNotificationConfig {
	return a2a.PushNotificationConfig{
		ID:             m.ConfigID,
		URL:            m.URL,
		Token:          m.Token,
		Authentication: m.Authentication.V,
	}
}

// DatabaseConfigStore is a [ConfigStore] backed by GORM.
type DatabaseConfigStore struct {
	db        *gorm.DB
	tableName string
}

var _ ConfigStore = (*DatabaseConfigStore)(nil)

// DatabaseConfigStoreConfig holds configuration for DatabaseConfigStore.
type DatabaseConfigStoreConfig struct {
	DB *gorm.DB
	// TableName defaults to [DefaultTableName].
	TableName string
	// AutoMigrate creates or migrates the table on construction.
	AutoMigrate bool
}

// NewDatabaseConfigStore creates a new DatabaseConfigStore.
func NewDatabaseConfigStore(ctx context.Context, config DatabaseConfigStoreConfig) (*DatabaseConfigStore, error) {
	if config.DB == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	tableName := config.TableName
	if tableName == "" {
		tableName = DefaultTableName
	}

	s := &DatabaseConfigStore{
		db:        config.DB,
		tableName: tableName,
	}
	if config.AutoMigrate {
		if err := s.table(ctx).AutoMigrate(&ConfigModel{}); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", tableName, err)
		}
	}

	return s, nil
}

func (s *DatabaseConfigStore) table(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.tableName)
}

func (s *DatabaseConfigStore) list(db *gorm.DB, taskID string) ([]a2a.PushNotificationConfig, error) {
	var models []ConfigModel
	if err := db.Where("task_id = ?", taskID).Order("created_at").Order("config_id").Find(&models).Error; err != nil {
		return nil, err
	}
	configs := make([]a2a.PushNotificationConfig, len(models))
	for i := range models {
		configs[i] = models[i].config()
	}
	return configs, nil
}

// Set upserts cfg.
func (s *DatabaseConfigStore) Set(ctx context.Context, taskID string, cfg a2a.PushNotificationConfig) (a2a.PushNotificationConfig, error) {
	if err := cfg.Validate(); err != nil {
		return a2a.PushNotificationConfig{}, fmt.Errorf("invalid push notification config: %w", err)
	}
	cfg = cfg.Clone()
	cfg.ID = configID(taskID, cfg)

	err := s.table(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "config_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "token", "authentication", "updated_at"}),
	}).Create(newConfigModel(taskID, cfg)).Error
	if err != nil {
		return a2a.PushNotificationConfig{}, fmt.Errorf("set push notification config for task %s: %w", taskID, err)
	}

	return cfg, nil
}

// Get returns a config of taskID.
func (s *DatabaseConfigStore) Get(ctx context.Context, taskID, configID string) (a2a.PushNotificationConfig, error) {
	configs, err := s.list(s.table(ctx), taskID)
	if err != nil {
		return a2a.PushNotificationConfig{}, fmt.Errorf("get push notification config for task %s: %w", taskID, err)
	}
	return selectConfig(taskID, configID, configs)
}

// List returns the configs of taskID.
func (s *DatabaseConfigStore) List(ctx context.Context, taskID string) ([]a2a.PushNotificationConfig, error) {
	configs, err := s.list(s.table(ctx), taskID)
	if err != nil {
		return nil, fmt.Errorf("list push notification configs for task %s: %w", taskID, err)
	}
	return configs, nil
}

// Delete removes a config of taskID.
func (s *DatabaseConfigStore) Delete(ctx context.Context, taskID, configID string) error {
	err := s.table(ctx).Where("task_id = ? AND config_id = ?", taskID, configID).Delete(&ConfigModel{}).Error
	if err != nil {
		return fmt.Errorf("delete push notification config %s of task %s: %w", configID, taskID, err)
	}
	return nil
}
