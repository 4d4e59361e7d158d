// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

// MessageSendConfiguration configures a message/send or message/stream call.
type MessageSendConfiguration struct {
	// AcceptedOutputModes lists the media types the client accepts.
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitzero"`
	// HistoryLength limits the number of history messages returned with the task.
	HistoryLength *int `json:"historyLength,omitzero"`
	// PushNotificationConfig registers a delivery target for the task.
	PushNotificationConfig *PushNotificationConfig `json:"pushNotificationConfig,omitzero"`
	// Blocking makes message/send wait for a terminal or interrupted state. Defaults to true.
	Blocking *bool `json:"blocking,omitzero"`
}

// IsBlocking reports whether the call waits for completion.
func (c *MessageSendConfiguration) IsBlocking() bool {
	return c == nil || c.Blocking == nil || *c.Blocking
}

// MessageSendParams are the params of message/send and message/stream.
type MessageSendParams struct {
	Message       *Message                  `json:"message"`
	Configuration *MessageSendConfiguration `json:"configuration,omitzero"`
	Metadata      map[string]any            `json:"metadata,omitzero"`
}

// TaskIDParams are the params of tasks/cancel and tasks/resubscribe.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// TaskQueryParams are the params of tasks/get.
type TaskQueryParams struct {
	ID string `json:"id"`
	// HistoryLength keeps only the most recent messages of the task history.
	HistoryLength *int           `json:"historyLength,omitzero"`
	Metadata      map[string]any `json:"metadata,omitzero"`
}

// GetTaskPushNotificationConfigParams are the params of tasks/pushNotificationConfig/get.
type GetTaskPushNotificationConfigParams struct {
	ID                       string         `json:"id"`
	PushNotificationConfigID string         `json:"pushNotificationConfigId,omitzero"`
	Metadata                 map[string]any `json:"metadata,omitzero"`
}

// ListTaskPushNotificationConfigParams are the params of tasks/pushNotificationConfig/list.
type ListTaskPushNotificationConfigParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// DeleteTaskPushNotificationConfigParams are the params of tasks/pushNotificationConfig/delete.
type DeleteTaskPushNotificationConfigParams struct {
	ID                       string         `json:"id"`
	PushNotificationConfigID string         `json:"pushNotificationConfigId"`
	Metadata                 map[string]any `json:"metadata,omitzero"`
}

func (p *Parser) messageSendParams(o object) (MessageSendParams, error) {
	var params MessageSendParams
	v, ok := o.lookup("message")
	if !ok {
		return params, schemaErrorf(o.path.field("message"), "required")
	}
	msg, err := p.message(v, o.path.field("message"))
	if err != nil {
		return params, err
	}
	params.Message = msg

	if o.has("configuration") {
		c, err := o.child("configuration")
		if err != nil {
			return params, err
		}
		cfg := &MessageSendConfiguration{}
		if cfg.AcceptedOutputModes, err = c.optionalStrings("acceptedOutputModes"); err != nil {
			return params, err
		}
		if cfg.HistoryLength, err = c.optionalInt("historyLength"); err != nil {
			return params, err
		}
		if cfg.HistoryLength != nil && *cfg.HistoryLength < 0 {
			return params, schemaErrorf(c.path.field("historyLength"), "must be >= 0")
		}
		if pv, ok := c.lookup("pushNotificationConfig"); ok {
			if cfg.PushNotificationConfig, err = p.pushConfig(pv, c.path.field("pushNotificationConfig")); err != nil {
				return params, err
			}
		}
		if c.has("blocking") {
			b, err := c.optionalBool("blocking")
			if err != nil {
				return params, err
			}
			cfg.Blocking = &b
		}
		params.Configuration = cfg
	}

	if params.Metadata, err = o.optionalMap("metadata"); err != nil {
		return params, err
	}
	return params, nil
}

func taskIDParams(o object) (TaskIDParams, error) {
	var params TaskIDParams
	var err error
	if params.ID, err = o.nonEmptyString("id"); err != nil {
		return params, err
	}
	params.Metadata, err = o.optionalMap("metadata")
	return params, err
}

func taskQueryParams(o object) (TaskQueryParams, error) {
	var params TaskQueryParams
	var err error
	if params.ID, err = o.nonEmptyString("id"); err != nil {
		return params, err
	}
	if params.HistoryLength, err = o.optionalInt("historyLength"); err != nil {
		return params, err
	}
	if params.HistoryLength != nil && *params.HistoryLength < 0 {
		return params, schemaErrorf(o.path.field("historyLength"), "must be >= 0")
	}
	params.Metadata, err = o.optionalMap("metadata")
	return params, err
}

func getPushConfigParams(o object) (GetTaskPushNotificationConfigParams, error) {
	var params GetTaskPushNotificationConfigParams
	var err error
	if params.ID, err = o.nonEmptyString("id"); err != nil {
		return params, err
	}
	if params.PushNotificationConfigID, err = o.optionalString("pushNotificationConfigId"); err != nil {
		return params, err
	}
	params.Metadata, err = o.optionalMap("metadata")
	return params, err
}

func listPushConfigParams(o object) (ListTaskPushNotificationConfigParams, error) {
	var params ListTaskPushNotificationConfigParams
	var err error
	if params.ID, err = o.nonEmptyString("id"); err != nil {
		return params, err
	}
	params.Metadata, err = o.optionalMap("metadata")
	return params, err
}

func deletePushConfigParams(o object) (DeleteTaskPushNotificationConfigParams, error) {
	var params DeleteTaskPushNotificationConfigParams
	var err error
	if params.ID, err = o.nonEmptyString("id"); err != nil {
		return params, err
	}
	if params.PushNotificationConfigID, err = o.nonEmptyString("pushNotificationConfigId"); err != nil {
		return params, err
	}
	params.Metadata, err = o.optionalMap("metadata")
	return params, err
}
