// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies failures produced while validating, dispatching or folding A2A payloads.
type ErrorKind uint8

const (
	// InvalidJSON reports bytes that are not a JSON document.
	InvalidJSON ErrorKind = iota + 1
	// SchemaMismatch reports a payload that matches no known shape.
	SchemaMismatch
	// InvalidPart reports a file part carrying both or neither of bytes and uri.
	InvalidPart
	// InvalidParams reports a recognized method whose params fail validation.
	InvalidParams
	// MethodNotFound reports an unrecognized method string.
	MethodNotFound
	// ProtocolViolation reports a well-formed frame arriving in an invalid position.
	ProtocolViolation
	// ApplicationError wraps executor level failures.
	ApplicationError
)

var errorKindNames = [...]string{
	InvalidJSON:       "invalid JSON",
	SchemaMismatch:    "schema mismatch",
	InvalidPart:       "invalid part",
	InvalidParams:     "invalid params",
	MethodNotFound:    "method not found",
	ProtocolViolation: "protocol violation",
	ApplicationError:  "application error",
}

// String implements [fmt.Stringer].
func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) && errorKindNames[k] != "" {
		return errorKindNames[k]
	}
	return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// Error is the error type returned by every validation, dispatch and fold operation of this package.
//
// Path names the first offending field using dotted/indexed notation, for example
// "params.message.parts[0].file". It is empty when the failure concerns the whole value.
type Error struct {
	Kind ErrorKind
	Path string
	Msg  string
	Err  error
}

var _ error = (*Error)(nil)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
//
// The sentinels ([ErrSchemaMismatch] and friends) carry no path and no message, so
//
//	errors.Is(err, a2a.ErrProtocolViolation)
//
// matches any *Error of kind ProtocolViolation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Path == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinel errors for use with [errors.Is].
var (
	ErrInvalidJSON       = &Error{Kind: InvalidJSON}
	ErrSchemaMismatch    = &Error{Kind: SchemaMismatch}
	ErrInvalidPart       = &Error{Kind: InvalidPart}
	ErrInvalidParams     = &Error{Kind: InvalidParams}
	ErrMethodNotFound    = &Error{Kind: MethodNotFound}
	ErrProtocolViolation = &Error{Kind: ProtocolViolation}
	ErrApplication       = &Error{Kind: ApplicationError}
)

func newError(kind ErrorKind, path fieldPath, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Path: string(path),
		Msg:  fmt.Sprintf(format, args...),
	}
}

func schemaErrorf(path fieldPath, format string, args ...any) *Error {
	return newError(SchemaMismatch, path, format, args...)
}

func protocolErrorf(format string, args ...any) *Error {
	return newError(ProtocolViolation, "", format, args...)
}

// asInvalidParams re-labels a content validation error found inside params.
// The original path, already rooted at "params", is kept.
func asInvalidParams(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: InvalidParams, Err: err}
	}
	if e.Kind == InvalidParams {
		return e
	}
	return &Error{
		Kind: InvalidParams,
		Path: e.Path,
		Msg:  e.Msg,
		Err:  e.Err,
	}
}

// NewApplicationError wraps an executor failure into an ApplicationError carrying the given JSON-RPC code.
func NewApplicationError(code int, message string, data any) *Error {
	return &Error{
		Kind: ApplicationError,
		Msg:  message,
		Err: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// ToJSONRPCError maps err onto the JSON-RPC error object sent on the wire.
//
// [*JSONRPCError] values anywhere in the chain are returned as is. [*Error] kinds map to the
// reserved JSON-RPC codes, with a ProtocolViolation reported as [InvalidAgentResponseErrorCode].
// Anything else becomes an internal error.
func ToJSONRPCError(err error) *JSONRPCError {
	if err == nil {
		return nil
	}

	var rpcErr *JSONRPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var e *Error
	if !errors.As(err, &e) {
		return NewInternalError(err.Error())
	}

	var data any
	if e.Path != "" {
		data = map[string]any{"path": e.Path}
	}

	switch e.Kind {
	case InvalidJSON:
		return &JSONRPCError{Code: JSONParseErrorCode, Message: e.Error(), Data: data}
	case SchemaMismatch:
		return &JSONRPCError{Code: InvalidRequestErrorCode, Message: e.Error(), Data: data}
	case InvalidPart, InvalidParams:
		return &JSONRPCError{Code: InvalidParamsErrorCode, Message: e.Error(), Data: data}
	case MethodNotFound:
		return &JSONRPCError{Code: MethodNotFoundErrorCode, Message: e.Error(), Data: data}
	case ProtocolViolation:
		return &JSONRPCError{Code: InvalidAgentResponseErrorCode, Message: e.Error(), Data: data}
	default:
		return &JSONRPCError{Code: InternalErrorCode, Message: e.Error(), Data: data}
	}
}
