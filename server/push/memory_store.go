// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package push

import (
	"context"
	"fmt"
	"slices"
	"sync"

	a2a "github.com/go-a2a/a2a-wire"
)

// InMemoryConfigStore is an in-memory implementation of [ConfigStore].
type InMemoryConfigStore struct {
	mu      sync.RWMutex
	configs map[string][]a2a.PushNotificationConfig
}

var _ ConfigStore = (*InMemoryConfigStore)(nil)

// NewInMemoryConfigStore creates a new InMemoryConfigStore.
func NewInMemoryConfigStore() *InMemoryConfigStore {
	return &InMemoryConfigStore{
		configs: make(map[string][]a2a.PushNotificationConfig),
	}
}

// Set upserts cfg.
func (s *InMemoryConfigStore) Set(ctx context.Context, taskID string, cfg a2a.PushNotificationConfig) (a2a.PushNotificationConfig, error) {
	if err := cfg.Validate(); err != nil {
		return a2a.PushNotificationConfig{}, fmt.Errorf("invalid push notification config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	configs := s.configs[taskID]
	cfg = cfg.Clone()
	cfg.ID = configID(taskID, cfg)

	i := slices.IndexFunc(configs, func(c a2a.PushNotificationConfig) bool { return c.ID == cfg.ID })
	if i >= 0 {
		configs[i] = cfg
	} else {
		configs = append(configs, cfg)
	}
	s.configs[taskID] = configs

	return cfg.Clone(), nil
}

// Get returns a config of taskID.
func (s *InMemoryConfigStore) Get(ctx context.Context, taskID, configID string) (a2a.PushNotificationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return selectConfig(taskID, configID, s.configs[taskID])
}

// List returns the configs of taskID.
func (s *InMemoryConfigStore) List(ctx context.Context, taskID string) ([]a2a.PushNotificationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := s.configs[taskID]
	out := make([]a2a.PushNotificationConfig, len(configs))
	for i, cfg := range configs {
		out[i] = cfg.Clone()
	}

	return out, nil
}

// Delete removes a config of taskID.
func (s *InMemoryConfigStore) Delete(ctx context.Context, taskID, configID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := slices.DeleteFunc(s.configs[taskID], func(c a2a.PushNotificationConfig) bool { return c.ID == configID })
	if len(configs) == 0 {
		delete(s.configs, taskID)
	} else {
		s.configs[taskID] = configs
	}

	return nil
}
