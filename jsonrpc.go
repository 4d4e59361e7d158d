// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// JSONRPCVersion is the only accepted value of the "jsonrpc" member.
const JSONRPCVersion = "2.0"

// A2A RPC method names.
const (
	MethodMessageSend                  = "message/send"
	MethodMessageStream                = "message/stream"
	MethodTasksResubscribe             = "tasks/resubscribe"
	MethodTasksGet                     = "tasks/get"
	MethodTasksCancel                  = "tasks/cancel"
	MethodPushNotificationConfigSet    = "tasks/pushNotificationConfig/set"
	MethodPushNotificationConfigGet    = "tasks/pushNotificationConfig/get"
	MethodPushNotificationConfigList   = "tasks/pushNotificationConfig/list"
	MethodPushNotificationConfigDelete = "tasks/pushNotificationConfig/delete"
	MethodGetAuthenticatedExtendedCard = "agent/getAuthenticatedExtendedCard"
)

// Methods lists every method recognized by [ParseRequest], in protocol order.
var Methods = []string{
	MethodMessageSend,
	MethodMessageStream,
	MethodTasksResubscribe,
	MethodTasksGet,
	MethodTasksCancel,
	MethodPushNotificationConfigSet,
	MethodPushNotificationConfigGet,
	MethodPushNotificationConfigList,
	MethodPushNotificationConfigDelete,
	MethodGetAuthenticatedExtendedCard,
}

// IsStreamingMethod reports whether responses to method are delivered as a stream.
func IsStreamingMethod(method string) bool {
	return method == MethodMessageStream || method == MethodTasksResubscribe
}

type idKind uint8

const (
	idAbsent idKind = iota
	idString
	idNumber
	idNull
)

// ID is a JSON-RPC request identifier.
//
// An ID is a string, a number, null, or absent. The zero value is absent, which is
// preserved on responses by omitting the member. Numbers keep their literal text.
type ID struct {
	kind idKind
	text string
}

// StringID returns a string identifier.
func StringID(s string) ID {
	return ID{kind: idString, text: s}
}

// NumberID returns a numeric identifier.
func NumberID(n int64) ID {
	return ID{kind: idNumber, text: strconv.FormatInt(n, 10)}
}

// NullID returns the explicit null identifier.
func NullID() ID {
	return ID{kind: idNull}
}

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool { return id.kind == idAbsent }

// IsNull reports whether the identifier is an explicit JSON null.
func (id ID) IsNull() bool { return id.kind == idNull }

// IsString reports whether the identifier is a JSON string.
func (id ID) IsString() bool { return id.kind == idString }

// IsNumber reports whether the identifier is a JSON number.
func (id ID) IsNumber() bool { return id.kind == idNumber }

// String returns the string value or the number literal. It is empty for null and absent identifiers.
func (id ID) String() string {
	return id.text
}

// Equal reports whether two identifiers are the same kind with the same text.
func (id ID) Equal(other ID) bool {
	return id.kind == other.kind && id.text == other.text
}

// MarshalJSON implements [json.Marshaler].
func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idString:
		return json.Marshal(id.text)
	case idNumber:
		return []byte(id.text), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements [json.Unmarshaler].
func (id *ID) UnmarshalJSON(data []byte) error {
	parsed, err := parseID(jsontext.Value(data), "id")
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseID(raw jsontext.Value, path fieldPath) (ID, error) {
	raw = raw.Clone()
	if err := raw.Compact(); err != nil {
		return ID{}, schemaErrorf(path, "invalid value: %v", err)
	}
	switch raw.Kind() {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ID{}, schemaErrorf(path, "invalid string: %v", err)
		}
		return StringID(s), nil
	case '0':
		return ID{kind: idNumber, text: string(raw)}, nil
	case 'n':
		return NullID(), nil
	default:
		return ID{}, schemaErrorf(path, "must be a string or a number")
	}
}

// JSONRPCError is the error object of a JSON-RPC response.
type JSONRPCError struct {
	// Code is the error code.
	Code int `json:"code"`
	// Message is a short description of the error.
	Message string `json:"message"`
	// Data holds optional additional information about the error.
	Data any `json:"data,omitzero"`
}

var _ error = (*JSONRPCError)(nil)

// Error implements the error interface.
func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes.
const (
	// JSONParseErrorCode indicates invalid JSON payload.
	JSONParseErrorCode = -32700
	// InvalidRequestErrorCode indicates request payload validation error.
	InvalidRequestErrorCode = -32600
	// MethodNotFoundErrorCode indicates the method does not exist.
	MethodNotFoundErrorCode = -32601
	// InvalidParamsErrorCode indicates invalid method parameters.
	InvalidParamsErrorCode = -32602
	// InternalErrorCode indicates an internal server error.
	InternalErrorCode = -32603
)

// A2A specific error codes.
const (
	// TaskNotFoundErrorCode indicates the specified task ID was not found.
	TaskNotFoundErrorCode = -32001
	// TaskNotCancelableErrorCode indicates the task is in a final state and cannot be canceled.
	TaskNotCancelableErrorCode = -32002
	// PushNotificationNotSupportedErrorCode indicates the agent does not support push notifications.
	PushNotificationNotSupportedErrorCode = -32003
	// UnsupportedOperationErrorCode indicates the requested operation is not supported.
	UnsupportedOperationErrorCode = -32004
	// ContentTypeNotSupportedErrorCode indicates a mismatch in supported content types.
	ContentTypeNotSupportedErrorCode = -32005
	// InvalidAgentResponseErrorCode indicates the agent produced an invalid response or stream.
	InvalidAgentResponseErrorCode = -32006
	// AuthenticatedExtendedCardNotConfiguredErrorCode indicates the agent has no extended card.
	AuthenticatedExtendedCardNotConfiguredErrorCode = -32007
)

// NewInternalError creates a new InternalError.
func NewInternalError(detail string) *JSONRPCError {
	return &JSONRPCError{
		Code:    InternalErrorCode,
		Message: "Internal error: " + detail,
	}
}

// NewTaskNotFoundError creates a new TaskNotFoundError.
func NewTaskNotFoundError(taskID string) *JSONRPCError {
	return &JSONRPCError{
		Code:    TaskNotFoundErrorCode,
		Message: "Task not found",
		Data:    map[string]any{"taskId": taskID},
	}
}

// NewTaskNotCancelableError creates a new TaskNotCancelableError.
func NewTaskNotCancelableError(taskID string, state TaskState) *JSONRPCError {
	return &JSONRPCError{
		Code:    TaskNotCancelableErrorCode,
		Message: "Task cannot be canceled",
		Data:    map[string]any{"taskId": taskID, "state": string(state)},
	}
}

// NewPushNotificationNotSupportedError creates a new PushNotificationNotSupportedError.
func NewPushNotificationNotSupportedError() *JSONRPCError {
	return &JSONRPCError{
		Code:    PushNotificationNotSupportedErrorCode,
		Message: "Push Notification is not supported",
	}
}

// NewUnsupportedOperationError creates a new UnsupportedOperationError.
func NewUnsupportedOperationError(operation string) *JSONRPCError {
	return &JSONRPCError{
		Code:    UnsupportedOperationErrorCode,
		Message: "This operation is not supported: " + operation,
	}
}

// NewContentTypeNotSupportedError creates a new ContentTypeNotSupportedError.
func NewContentTypeNotSupportedError(mimeType string) *JSONRPCError {
	return &JSONRPCError{
		Code:    ContentTypeNotSupportedErrorCode,
		Message: "Content type not supported",
		Data:    map[string]any{"mimeType": mimeType},
	}
}

// NewAuthenticatedExtendedCardNotConfiguredError creates a new AuthenticatedExtendedCardNotConfiguredError.
func NewAuthenticatedExtendedCardNotConfiguredError() *JSONRPCError {
	return &JSONRPCError{
		Code:    AuthenticatedExtendedCardNotConfiguredErrorCode,
		Message: "Authenticated Extended Card is not configured",
	}
}
