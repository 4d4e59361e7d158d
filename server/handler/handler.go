// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package handler serves the A2A JSON-RPC methods on top of an agent executor,
// a task store and optional push notification support.
//
// [RequestHandler] is the transport independent contract, with one method per
// RPC. [JSONRPCHandler] adapts it to raw JSON-RPC request bodies.
package handler

import (
	"context"
	"iter"

	a2a "github.com/go-a2a/a2a-wire"
)

// RequestHandler handles the A2A protocol methods.
//
// Errors are mapped onto the wire with [a2a.ToJSONRPCError]. The caller identity is
// read from the context with auth.UserFromContext.
type RequestHandler interface {
	// OnGetTask handles tasks/get.
	OnGetTask(ctx context.Context, params *a2a.TaskQueryParams) (*a2a.Task, error)

	// OnCancelTask handles tasks/cancel.
	OnCancelTask(ctx context.Context, params *a2a.TaskIDParams) (*a2a.Task, error)

	// OnMessageSend handles message/send.
	OnMessageSend(ctx context.Context, params *a2a.MessageSendParams) (a2a.SendMessageResult, error)

	// OnMessageSendStream handles message/stream. The sequence ends after the
	// final frame or the first error.
	OnMessageSendStream(ctx context.Context, params *a2a.MessageSendParams) iter.Seq2[a2a.StreamResult, error]

	// OnResubscribeToTask handles tasks/resubscribe.
	OnResubscribeToTask(ctx context.Context, params *a2a.TaskIDParams) iter.Seq2[a2a.StreamResult, error]

	// OnSetTaskPushNotificationConfig handles tasks/pushNotificationConfig/set.
	OnSetTaskPushNotificationConfig(ctx context.Context, params *a2a.TaskPushNotificationConfig) (*a2a.TaskPushNotificationConfig, error)

	// OnGetTaskPushNotificationConfig handles tasks/pushNotificationConfig/get.
	OnGetTaskPushNotificationConfig(ctx context.Context, params *a2a.GetTaskPushNotificationConfigParams) (*a2a.TaskPushNotificationConfig, error)

	// OnListTaskPushNotificationConfig handles tasks/pushNotificationConfig/list.
	OnListTaskPushNotificationConfig(ctx context.Context, params *a2a.ListTaskPushNotificationConfigParams) (a2a.TaskPushNotificationConfigList, error)

	// OnDeleteTaskPushNotificationConfig handles tasks/pushNotificationConfig/delete.
	OnDeleteTaskPushNotificationConfig(ctx context.Context, params *a2a.DeleteTaskPushNotificationConfigParams) error

	// OnGetAuthenticatedExtendedCard handles agent/getAuthenticatedExtendedCard.
	OnGetAuthenticatedExtendedCard(ctx context.Context) (*a2a.AgentCard, error)
}
