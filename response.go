// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Result is the payload of a successful response.
//
// The implementations are [*Message], [*Task], [*TaskStatusUpdateEvent], [*TaskArtifactUpdateEvent],
// [*TaskPushNotificationConfig], [TaskPushNotificationConfigList], [*AgentCard] and [NullResult].
type Result interface {
	isResult()
}

// NullResult is the JSON null result returned by tasks/pushNotificationConfig/delete.
type NullResult struct{}

// MarshalJSON implements [json.Marshaler].
func (NullResult) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

var (
	_ Result = (*Message)(nil)
	_ Result = (*Task)(nil)
	_ Result = (*TaskStatusUpdateEvent)(nil)
	_ Result = (*TaskArtifactUpdateEvent)(nil)
	_ Result = (*TaskPushNotificationConfig)(nil)
	_ Result = TaskPushNotificationConfigList(nil)
	_ Result = (*AgentCard)(nil)
	_ Result = NullResult{}
)

func (*Message) isResult()                       {}
func (*Task) isResult()                          {}
func (*TaskPushNotificationConfig) isResult()    {}
func (TaskPushNotificationConfigList) isResult() {}
func (NullResult) isResult()                     {}

// Response is a JSON-RPC response: exactly one of Result and Error is set.
type Response struct {
	// ID echoes the request identifier. The zero value is omitted on the wire.
	ID     ID
	Result Result
	Error  *JSONRPCError
}

// NewResponse returns a success response.
func NewResponse(id ID, result Result) *Response {
	return &Response{ID: id, Result: result}
}

// NewErrorResponse returns a failure response for err, mapped with [ToJSONRPCError].
func NewErrorResponse(id ID, err error) *Response {
	return &Response{ID: id, Error: ToJSONRPCError(err)}
}

// Validate reports whether exactly one of Result and Error is set.
func (r *Response) Validate() error {
	switch {
	case r.Result != nil && r.Error != nil:
		return schemaErrorf("", "response carries both result and error")
	case r.Result == nil && r.Error == nil:
		return schemaErrorf("", "response carries neither result nor error")
	}
	return nil
}

type responseWire struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      ID             `json:"id,omitzero"`
	Result  jsontext.Value `json:"result,omitzero"`
	Error   *JSONRPCError  `json:"error,omitzero"`
}

// MarshalJSON implements [json.Marshaler].
func (r *Response) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	w := responseWire{JSONRPC: JSONRPCVersion, ID: r.ID, Error: r.Error}
	if r.Result != nil {
		b, err := json.Marshal(r.Result)
		if err != nil {
			return nil, err
		}
		w.Result = b
	}
	return json.Marshal(w)
}

// ParseResponse decodes a response to a call of method with the default parser.
func ParseResponse(method string, data []byte) (*Response, error) {
	return defaultParser.ParseResponse(method, data)
}

// ParseResponse decodes a response to a call of method.
//
// A response carrying both or neither of "result" and "error" is a SchemaMismatch. The result
// is decoded into the [Result] type method produces; an absent "id" stays absent.
func (p *Parser) ParseResponse(method string, data []byte) (*Response, error) {
	var members map[string]jsontext.Value
	if err := json.Unmarshal(data, &members); err != nil {
		if _, derr := decodeAny(data); derr != nil {
			return nil, derr
		}
		return nil, schemaErrorf("", "response must be a JSON object")
	}

	if err := checkVersion(members); err != nil {
		return nil, err
	}

	resp := &Response{}
	if raw, ok := members["id"]; ok {
		id, err := parseID(raw, "id")
		if err != nil {
			return nil, err
		}
		resp.ID = id
	}

	rawResult, hasResult := members["result"]
	rawError, hasError := members["error"]
	switch {
	case hasResult && hasError:
		return nil, schemaErrorf("", "response carries both result and error")
	case !hasResult && !hasError:
		return nil, schemaErrorf("", "response carries neither result nor error")
	}

	if hasError {
		rpcErr, err := parseRPCError(rawError)
		if err != nil {
			return nil, err
		}
		resp.Error = rpcErr
		return resp, nil
	}

	v, err := decodeAny(rawResult)
	if err != nil {
		return nil, err
	}
	result, err := p.result(method, v, "result")
	if err != nil {
		return nil, err
	}
	resp.Result = result
	return resp, nil
}

func checkVersion(members map[string]jsontext.Value) error {
	raw, ok := members["jsonrpc"]
	if !ok {
		return schemaErrorf("jsonrpc", "required")
	}
	var version string
	if err := json.Unmarshal(raw, &version); err != nil || version != JSONRPCVersion {
		return schemaErrorf("jsonrpc", "must be %q", JSONRPCVersion)
	}
	return nil
}

func parseRPCError(raw jsontext.Value) (*JSONRPCError, error) {
	v, err := decodeAny(raw)
	if err != nil {
		return nil, err
	}
	o, err := asObject(v, "error")
	if err != nil {
		return nil, err
	}
	codeValue, ok := o.lookup("code")
	if !ok {
		return nil, schemaErrorf("error.code", "required")
	}
	code, ok := codeValue.(float64)
	if !ok || code != float64(int(code)) {
		return nil, schemaErrorf("error.code", "expected integer, got %s", typeName(codeValue))
	}
	message, err := o.requiredString("message")
	if err != nil {
		return nil, err
	}
	return &JSONRPCError{Code: int(code), Message: message, Data: o.m["data"]}, nil
}

// result decodes the success payload of method.
func (p *Parser) result(method string, v any, path fieldPath) (Result, error) {
	switch method {
	case MethodMessageSend:
		return p.sendMessageResult(v, path)
	case MethodMessageStream, MethodTasksResubscribe:
		return p.streamResult(v, path)
	case MethodTasksGet, MethodTasksCancel:
		return p.task(v, path)
	case MethodPushNotificationConfigSet, MethodPushNotificationConfigGet:
		return p.taskPushConfig(v, path)
	case MethodPushNotificationConfigList:
		return p.taskPushConfigList(v, path)
	case MethodPushNotificationConfigDelete:
		if v != nil {
			return nil, schemaErrorf(path, "expected null, got %s", typeName(v))
		}
		return NullResult{}, nil
	case MethodGetAuthenticatedExtendedCard:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, schemaErrorf(path, "%v", err)
		}
		card := &AgentCard{}
		if err := json.Unmarshal(b, card); err != nil {
			return nil, schemaErrorf(path, "%v", err)
		}
		return card, nil
	default:
		return nil, newError(MethodNotFound, "method", "unknown method %q", method)
	}
}
