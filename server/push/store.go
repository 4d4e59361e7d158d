// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package push stores push notification configurations and delivers task
// updates to the registered webhooks.
package push

import (
	"cmp"
	"context"
	"errors"

	a2a "github.com/go-a2a/a2a-wire"
)

var (
	// ErrConfigNotFound is returned when a task has no config with the requested ID.
	ErrConfigNotFound = errors.New("push notification config not found")

	// ErrAmbiguousConfig is returned when a config is requested without ID and
	// the task has several configs, none of which carries the task ID.
	ErrAmbiguousConfig = errors.New("push notification config id is required when a task has several configs")
)

// ConfigStore stores the push notification configs of tasks.
//
// A task may have several configs, distinguished by their ID.
type ConfigStore interface {
	// Set upserts cfg under its ID and returns the stored config.
	// A config without ID is stored under the task ID, so repeating it replaces
	// the previous one.
	Set(ctx context.Context, taskID string, cfg a2a.PushNotificationConfig) (a2a.PushNotificationConfig, error)

	// Get returns the config with the given ID. An empty configID selects the
	// config whose ID equals the task ID, or else the only config of the task.
	Get(ctx context.Context, taskID, configID string) (a2a.PushNotificationConfig, error)

	// List returns the configs of a task in insertion order. The result is never nil.
	List(ctx context.Context, taskID string) ([]a2a.PushNotificationConfig, error)

	// Delete removes a config. Deleting a missing config is not an error.
	Delete(ctx context.Context, taskID, configID string) error
}

// configID returns the ID under which cfg is stored.
func configID(taskID string, cfg a2a.PushNotificationConfig) string {
	return cmp.Or(cfg.ID, taskID)
}

// selectConfig applies the lookup rules of [ConfigStore.Get] to configs.
func selectConfig(taskID, configID string, configs []a2a.PushNotificationConfig) (a2a.PushNotificationConfig, error) {
	explicit := configID != ""
	if !explicit {
		configID = taskID
	}
	for _, cfg := range configs {
		if cfg.ID == configID {
			return cfg.Clone(), nil
		}
	}

	switch {
	case explicit || len(configs) == 0:
		return a2a.PushNotificationConfig{}, ErrConfigNotFound
	case len(configs) == 1:
		return configs[0].Clone(), nil
	default:
		return a2a.PushNotificationConfig{}, ErrAmbiguousConfig
	}
}
