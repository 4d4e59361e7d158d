// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"net/url"

	"github.com/go-json-experiment/json"
)

// PushNotificationAuthenticationInfo describes how the agent authenticates to a push notification endpoint.
type PushNotificationAuthenticationInfo struct {
	// Schemes lists the supported authentication schemes, e.g. "Bearer".
	Schemes []string `json:"schemes"`
	// Credentials is optional credential material.
	Credentials string `json:"credentials,omitzero"`
}

// PushNotificationConfig is the out-of-band delivery target of task updates.
type PushNotificationConfig struct {
	// ID distinguishes multiple configs of the same task.
	ID string `json:"id,omitzero"`
	// URL is the webhook receiving the notifications.
	URL string `json:"url"`
	// Token is a task or session scoped token echoed back to the receiver.
	Token          string                              `json:"token,omitzero"`
	Authentication *PushNotificationAuthenticationInfo `json:"authentication,omitzero"`
}

// TaskPushNotificationConfig binds a [PushNotificationConfig] to a task.
type TaskPushNotificationConfig struct {
	TaskID                 string                 `json:"taskId"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}

// TaskPushNotificationConfigList is the result of tasks/pushNotificationConfig/list.
type TaskPushNotificationConfigList []*TaskPushNotificationConfig

// Clone returns a deep copy of c.
func (c PushNotificationConfig) Clone() PushNotificationConfig {
	if c.Authentication != nil {
		auth := *c.Authentication
		auth.Schemes = cloneStrings(c.Authentication.Schemes)
		c.Authentication = &auth
	}
	return c
}

// Validate reports whether c is a usable delivery target.
func (c *PushNotificationConfig) Validate() error {
	if c.URL == "" {
		return schemaErrorf("url", "required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return schemaErrorf("url", "not an absolute URL: %q", c.URL)
	}
	if c.Authentication != nil && c.Authentication.Schemes == nil {
		return schemaErrorf("authentication.schemes", "required")
	}
	return nil
}

// MarshalJSON implements [json.Marshaler].
//
// An empty list encodes as [] rather than null.
func (l TaskPushNotificationConfigList) MarshalJSON() ([]byte, error) {
	if l == nil {
		l = TaskPushNotificationConfigList{}
	}
	return json.Marshal([]*TaskPushNotificationConfig(l))
}

// UnmarshalJSON implements [json.Unmarshaler].
func (c *PushNotificationConfig) UnmarshalJSON(data []byte) error {
	cfg, err := unmarshalWith(data, defaultParser.pushConfig)
	if err != nil {
		return err
	}
	*c = *cfg
	return nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (c *TaskPushNotificationConfig) UnmarshalJSON(data []byte) error {
	cfg, err := unmarshalWith(data, defaultParser.taskPushConfig)
	if err != nil {
		return err
	}
	*c = *cfg
	return nil
}

func (p *Parser) pushConfig(v any, path fieldPath) (*PushNotificationConfig, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	cfg := &PushNotificationConfig{}
	if cfg.ID, err = o.optionalString("id"); err != nil {
		return nil, err
	}
	if cfg.URL, err = o.nonEmptyString("url"); err != nil {
		return nil, err
	}
	if cfg.Token, err = o.optionalString("token"); err != nil {
		return nil, err
	}
	if o.has("authentication") {
		auth, err := o.child("authentication")
		if err != nil {
			return nil, err
		}
		info := &PushNotificationAuthenticationInfo{}
		if _, _, err := auth.array("schemes", true); err != nil {
			return nil, err
		}
		if info.Schemes, err = auth.optionalStrings("schemes"); err != nil {
			return nil, err
		}
		if info.Credentials, err = auth.optionalString("credentials"); err != nil {
			return nil, err
		}
		cfg.Authentication = info
	}
	return cfg, nil
}

func (p *Parser) taskPushConfig(v any, path fieldPath) (*TaskPushNotificationConfig, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	tpc := &TaskPushNotificationConfig{}
	if tpc.TaskID, err = o.nonEmptyString("taskId"); err != nil {
		return nil, err
	}
	cfgValue, ok := o.lookup("pushNotificationConfig")
	if !ok {
		return nil, schemaErrorf(o.path.field("pushNotificationConfig"), "required")
	}
	cfg, err := p.pushConfig(cfgValue, o.path.field("pushNotificationConfig"))
	if err != nil {
		return nil, err
	}
	tpc.PushNotificationConfig = *cfg
	return tpc, nil
}

func (p *Parser) taskPushConfigList(v any, path fieldPath) (TaskPushNotificationConfigList, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, schemaErrorf(path, "expected array, got %s", typeName(v))
	}
	list := make(TaskPushNotificationConfigList, 0, len(arr))
	for i, item := range arr {
		cfg, err := p.taskPushConfig(item, path.index(i))
		if err != nil {
			return nil, err
		}
		list = append(list, cfg)
	}
	return list, nil
}
