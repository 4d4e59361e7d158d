// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Request is a validated JSON-RPC request, one concrete type per method.
//
// The implementations are [*SendMessageRequest], [*SendStreamingMessageRequest],
// [*TaskResubscriptionRequest], [*GetTaskRequest], [*CancelTaskRequest],
// [*SetTaskPushNotificationConfigRequest], [*GetTaskPushNotificationConfigRequest],
// [*ListTaskPushNotificationConfigRequest], [*DeleteTaskPushNotificationConfigRequest]
// and [*GetAuthenticatedExtendedCardRequest].
type Request interface {
	// MethodName returns the JSON-RPC method.
	MethodName() string
	// RequestID returns the request identifier.
	RequestID() ID

	isRequest()
}

// SendMessageRequest is a message/send call.
type SendMessageRequest struct {
	ID     ID
	Params MessageSendParams
}

// SendStreamingMessageRequest is a message/stream call.
type SendStreamingMessageRequest struct {
	ID     ID
	Params MessageSendParams
}

// TaskResubscriptionRequest is a tasks/resubscribe call.
type TaskResubscriptionRequest struct {
	ID     ID
	Params TaskIDParams
}

// GetTaskRequest is a tasks/get call.
type GetTaskRequest struct {
	ID     ID
	Params TaskQueryParams
}

// CancelTaskRequest is a tasks/cancel call.
type CancelTaskRequest struct {
	ID     ID
	Params TaskIDParams
}

// SetTaskPushNotificationConfigRequest is a tasks/pushNotificationConfig/set call.
type SetTaskPushNotificationConfigRequest struct {
	ID     ID
	Params TaskPushNotificationConfig
}

// GetTaskPushNotificationConfigRequest is a tasks/pushNotificationConfig/get call.
type GetTaskPushNotificationConfigRequest struct {
	ID     ID
	Params GetTaskPushNotificationConfigParams
}

// ListTaskPushNotificationConfigRequest is a tasks/pushNotificationConfig/list call.
type ListTaskPushNotificationConfigRequest struct {
	ID     ID
	Params ListTaskPushNotificationConfigParams
}

// DeleteTaskPushNotificationConfigRequest is a tasks/pushNotificationConfig/delete call.
type DeleteTaskPushNotificationConfigRequest struct {
	ID     ID
	Params DeleteTaskPushNotificationConfigParams
}

// GetAuthenticatedExtendedCardRequest is an agent/getAuthenticatedExtendedCard call. It has no params.
type GetAuthenticatedExtendedCardRequest struct {
	ID ID
}

func (*SendMessageRequest) MethodName() string          { return MethodMessageSend }
func (*SendStreamingMessageRequest) MethodName() string { return MethodMessageStream }
func (*TaskResubscriptionRequest) MethodName() string   { return MethodTasksResubscribe }
func (*GetTaskRequest) MethodName() string              { return MethodTasksGet }
func (*CancelTaskRequest) MethodName() string           { return MethodTasksCancel }
func (*SetTaskPushNotificationConfigRequest) MethodName() string {
	return MethodPushNotificationConfigSet
}
func (*GetTaskPushNotificationConfigRequest) MethodName() string {
	return MethodPushNotificationConfigGet
}
func (*ListTaskPushNotificationConfigRequest) MethodName() string {
	return MethodPushNotificationConfigList
}
func (*DeleteTaskPushNotificationConfigRequest) MethodName() string {
	return MethodPushNotificationConfigDelete
}
func (*GetAuthenticatedExtendedCardRequest) MethodName() string {
	return MethodGetAuthenticatedExtendedCard
}

func (r *SendMessageRequest) RequestID() ID                      { return r.ID }
func (r *SendStreamingMessageRequest) RequestID() ID             { return r.ID }
func (r *TaskResubscriptionRequest) RequestID() ID               { return r.ID }
func (r *GetTaskRequest) RequestID() ID                          { return r.ID }
func (r *CancelTaskRequest) RequestID() ID                       { return r.ID }
func (r *SetTaskPushNotificationConfigRequest) RequestID() ID    { return r.ID }
func (r *GetTaskPushNotificationConfigRequest) RequestID() ID    { return r.ID }
func (r *ListTaskPushNotificationConfigRequest) RequestID() ID   { return r.ID }
func (r *DeleteTaskPushNotificationConfigRequest) RequestID() ID { return r.ID }
func (r *GetAuthenticatedExtendedCardRequest) RequestID() ID     { return r.ID }

func (*SendMessageRequest) isRequest()                      {}
func (*SendStreamingMessageRequest) isRequest()             {}
func (*TaskResubscriptionRequest) isRequest()               {}
func (*GetTaskRequest) isRequest()                          {}
func (*CancelTaskRequest) isRequest()                       {}
func (*SetTaskPushNotificationConfigRequest) isRequest()    {}
func (*GetTaskPushNotificationConfigRequest) isRequest()    {}
func (*ListTaskPushNotificationConfigRequest) isRequest()   {}
func (*DeleteTaskPushNotificationConfigRequest) isRequest() {}
func (*GetAuthenticatedExtendedCardRequest) isRequest()     {}

// params returns the params value of r for encoding, or nil when the method has none.
func params(r Request) any {
	switch r := r.(type) {
	case *SendMessageRequest:
		return &r.Params
	case *SendStreamingMessageRequest:
		return &r.Params
	case *TaskResubscriptionRequest:
		return &r.Params
	case *GetTaskRequest:
		return &r.Params
	case *CancelTaskRequest:
		return &r.Params
	case *SetTaskPushNotificationConfigRequest:
		return &r.Params
	case *GetTaskPushNotificationConfigRequest:
		return &r.Params
	case *ListTaskPushNotificationConfigRequest:
		return &r.Params
	case *DeleteTaskPushNotificationConfigRequest:
		return &r.Params
	case *GetAuthenticatedExtendedCardRequest:
		return nil
	default:
		return nil
	}
}

type requestWire struct {
	JSONRPC string `json:"jsonrpc"`
	ID      ID     `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitzero"`
}

// MarshalRequest encodes r as a JSON-RPC request object.
func MarshalRequest(r Request) ([]byte, error) {
	id := r.RequestID()
	if id.IsZero() || id.IsNull() {
		return nil, schemaErrorf("id", "request identifier must be a string or a number")
	}
	return json.Marshal(requestWire{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  r.MethodName(),
		Params:  params(r),
	})
}

// ParseRequest validates and routes a raw JSON-RPC request with the default parser.
func ParseRequest(data []byte) (Request, error) {
	return defaultParser.ParseRequest(data)
}

// ParseRequest validates and routes a raw JSON-RPC request.
//
// Malformed JSON yields InvalidJSON; a malformed envelope yields SchemaMismatch; an unknown
// method yields MethodNotFound; params that do not fit the method yield InvalidParams with
// the path of the first failing field. The returned error is always an [*Error].
func (p *Parser) ParseRequest(data []byte) (Request, error) {
	env, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}
	req, err := p.route(env)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// envelope is the method-independent part of a request.
type envelope struct {
	id        ID
	method    string
	params    any
	hasParams bool
}

// RequestIDOf extracts the identifier of a raw request on a best effort basis, for
// answering requests that failed validation.
func RequestIDOf(data []byte) ID {
	var members map[string]jsontext.Value
	if err := json.Unmarshal(data, &members); err != nil {
		return NullID()
	}
	raw, ok := members["id"]
	if !ok {
		return NullID()
	}
	id, err := parseID(raw, "id")
	if err != nil {
		return NullID()
	}
	return id
}

func parseEnvelope(data []byte) (envelope, error) {
	var env envelope
	if _, err := decodeAny(data); err != nil {
		return env, err
	}

	var members map[string]jsontext.Value
	if err := json.Unmarshal(data, &members); err != nil {
		return env, schemaErrorf("", "request must be a JSON object")
	}
	if err := checkVersion(members); err != nil {
		return env, err
	}

	rawID, ok := members["id"]
	if !ok {
		return env, schemaErrorf("id", "required")
	}
	id, err := parseID(rawID, "id")
	if err != nil {
		return env, err
	}
	if id.IsNull() {
		return env, schemaErrorf("id", "must be a string or a number")
	}
	env.id = id

	rawMethod, ok := members["method"]
	if !ok {
		return env, schemaErrorf("method", "required")
	}
	if rawMethod.Kind() != '"' {
		return env, schemaErrorf("method", "expected string")
	}
	if err := json.Unmarshal(rawMethod, &env.method); err != nil {
		return env, schemaErrorf("method", "%v", err)
	}

	if rawParams, ok := members["params"]; ok {
		v, err := decodeAny(rawParams)
		if err != nil {
			return env, err
		}
		env.params, env.hasParams = v, v != nil
	}
	return env, nil
}

func (p *Parser) route(env envelope) (Request, error) {
	schema, ok := paramsSchemas[env.method]
	if !ok {
		return nil, newError(MethodNotFound, "method", "unknown method %q", env.method)
	}

	if env.method == MethodGetAuthenticatedExtendedCard {
		if env.hasParams {
			if m, ok := env.params.(map[string]any); !ok || len(m) != 0 {
				return nil, newError(InvalidParams, "params", "method takes no params")
			}
		}
		return &GetAuthenticatedExtendedCardRequest{ID: env.id}, nil
	}

	if !env.hasParams {
		return nil, newError(InvalidParams, "params", "required")
	}
	if err := validateSchema(schema, env.params); err != nil {
		return nil, err
	}

	o, err := asObject(env.params, "params")
	if err != nil {
		return nil, asInvalidParams(err)
	}

	req, err := p.decodeParams(env, o)
	if err != nil {
		return nil, asInvalidParams(err)
	}
	return req, nil
}

func (p *Parser) decodeParams(env envelope, o object) (Request, error) {
	switch env.method {
	case MethodMessageSend:
		params, err := p.messageSendParams(o)
		if err != nil {
			return nil, err
		}
		return &SendMessageRequest{ID: env.id, Params: params}, nil
	case MethodMessageStream:
		params, err := p.messageSendParams(o)
		if err != nil {
			return nil, err
		}
		return &SendStreamingMessageRequest{ID: env.id, Params: params}, nil
	case MethodTasksResubscribe:
		params, err := taskIDParams(o)
		if err != nil {
			return nil, err
		}
		return &TaskResubscriptionRequest{ID: env.id, Params: params}, nil
	case MethodTasksGet:
		params, err := taskQueryParams(o)
		if err != nil {
			return nil, err
		}
		return &GetTaskRequest{ID: env.id, Params: params}, nil
	case MethodTasksCancel:
		params, err := taskIDParams(o)
		if err != nil {
			return nil, err
		}
		return &CancelTaskRequest{ID: env.id, Params: params}, nil
	case MethodPushNotificationConfigSet:
		params, err := p.taskPushConfig(o.m, o.path)
		if err != nil {
			return nil, err
		}
		return &SetTaskPushNotificationConfigRequest{ID: env.id, Params: *params}, nil
	case MethodPushNotificationConfigGet:
		params, err := getPushConfigParams(o)
		if err != nil {
			return nil, err
		}
		return &GetTaskPushNotificationConfigRequest{ID: env.id, Params: params}, nil
	case MethodPushNotificationConfigList:
		params, err := listPushConfigParams(o)
		if err != nil {
			return nil, err
		}
		return &ListTaskPushNotificationConfigRequest{ID: env.id, Params: params}, nil
	case MethodPushNotificationConfigDelete:
		params, err := deletePushConfigParams(o)
		if err != nil {
			return nil, err
		}
		return &DeleteTaskPushNotificationConfigRequest{ID: env.id, Params: params}, nil
	default:
		return nil, newError(MethodNotFound, "method", "unknown method %q", env.method)
	}
}
