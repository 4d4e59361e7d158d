// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/internal/telemetry"
)

// JSONRPCHandler adapts a [RequestHandler] to raw JSON-RPC request bodies.
type JSONRPCHandler struct {
	handler   RequestHandler
	parser    *a2a.Parser
	agentCard *a2a.AgentCard
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// JSONRPCHandlerOption configures a [JSONRPCHandler].
type JSONRPCHandlerOption func(*JSONRPCHandler)

// WithAgentCard gates the optional methods on the capabilities advertised by card.
func WithAgentCard(card *a2a.AgentCard) JSONRPCHandlerOption {
	return func(h *JSONRPCHandler) {
		h.agentCard = card
	}
}

// WithParser sets the parser of the request bodies.
func WithParser(p *a2a.Parser) JSONRPCHandlerOption {
	return func(h *JSONRPCHandler) {
		h.parser = p
	}
}

// WithMetrics sets the instruments recording the handled requests.
func WithMetrics(m *telemetry.Metrics) JSONRPCHandlerOption {
	return func(h *JSONRPCHandler) {
		h.metrics = m
	}
}

// WithJSONRPCLogger sets the logger of the JSON-RPC handler.
func WithJSONRPCLogger(logger *slog.Logger) JSONRPCHandlerOption {
	return func(h *JSONRPCHandler) {
		h.logger = logger
	}
}

// NewJSONRPCHandler creates a new JSONRPCHandler with the provided request handler.
func NewJSONRPCHandler(handler RequestHandler, opts ...JSONRPCHandlerOption) *JSONRPCHandler {
	if handler == nil {
		panic("request handler cannot be nil")
	}

	h := &JSONRPCHandler{
		handler: handler,
		parser:  a2a.NewParser(),
		metrics: telemetry.Default(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handle serves one JSON-RPC request body.
//
// Unary methods, and requests that fail validation, return a single response.
// Streaming methods return a sequence of responses, one per frame, ending with
// the final frame or with an error response. Breaking out of the sequence
// unsubscribes from the task.
func (h *JSONRPCHandler) Handle(ctx context.Context, body []byte) (*a2a.Response, iter.Seq[*a2a.Response]) {
	start := time.Now()

	req, err := h.parser.ParseRequest(body)
	if err != nil {
		id := a2a.RequestIDOf(body)
		h.logger.WarnContext(ctx, "rejected request", slog.String("id", id.String()), slog.Any("error", err))
		h.metrics.RecordRequest(ctx, "invalid", telemetry.OutcomeError, time.Since(start))
		return a2a.NewErrorResponse(id, err), nil
	}

	if a2a.IsStreamingMethod(req.MethodName()) {
		return nil, h.stream(ctx, req, start)
	}

	result, err := h.dispatch(ctx, req)
	h.record(ctx, req, err, start)
	if err != nil {
		return a2a.NewErrorResponse(req.RequestID(), err), nil
	}
	return a2a.NewResponse(req.RequestID(), result), nil
}

// HandleRequest serves an already parsed unary request.
func (h *JSONRPCHandler) HandleRequest(ctx context.Context, req a2a.Request) *a2a.Response {
	if a2a.IsStreamingMethod(req.MethodName()) {
		err := &a2a.Error{Kind: a2a.InvalidParams, Msg: fmt.Sprintf("%s is a streaming method", req.MethodName())}
		return a2a.NewErrorResponse(req.RequestID(), err)
	}

	start := time.Now()
	result, err := h.dispatch(ctx, req)
	h.record(ctx, req, err, start)
	if err != nil {
		return a2a.NewErrorResponse(req.RequestID(), err)
	}
	return a2a.NewResponse(req.RequestID(), result)
}

func (h *JSONRPCHandler) dispatch(ctx context.Context, req a2a.Request) (a2a.Result, error) {
	if err := h.checkCapability(req.MethodName()); err != nil {
		return nil, err
	}

	switch req := req.(type) {
	case *a2a.SendMessageRequest:
		return h.handler.OnMessageSend(ctx, &req.Params)
	case *a2a.GetTaskRequest:
		return h.handler.OnGetTask(ctx, &req.Params)
	case *a2a.CancelTaskRequest:
		return h.handler.OnCancelTask(ctx, &req.Params)
	case *a2a.SetTaskPushNotificationConfigRequest:
		return h.handler.OnSetTaskPushNotificationConfig(ctx, &req.Params)
	case *a2a.GetTaskPushNotificationConfigRequest:
		return h.handler.OnGetTaskPushNotificationConfig(ctx, &req.Params)
	case *a2a.ListTaskPushNotificationConfigRequest:
		return h.handler.OnListTaskPushNotificationConfig(ctx, &req.Params)
	case *a2a.DeleteTaskPushNotificationConfigRequest:
		if err := h.handler.OnDeleteTaskPushNotificationConfig(ctx, &req.Params); err != nil {
			return nil, err
		}
		return a2a.NullResult{}, nil
	case *a2a.GetAuthenticatedExtendedCardRequest:
		return h.handler.OnGetAuthenticatedExtendedCard(ctx)
	default:
		return nil, &a2a.Error{Kind: a2a.MethodNotFound, Msg: fmt.Sprintf("unsupported method %q", req.MethodName())}
	}
}

func (h *JSONRPCHandler) stream(ctx context.Context, req a2a.Request, start time.Time) iter.Seq[*a2a.Response] {
	id := req.RequestID()
	method := req.MethodName()

	return func(yield func(*a2a.Response) bool) {
		var err error
		defer func() {
			h.record(ctx, req, err, start)
		}()

		if err = h.checkCapability(method); err != nil {
			yield(a2a.NewErrorResponse(id, err))
			return
		}

		var results iter.Seq2[a2a.StreamResult, error]
		switch req := req.(type) {
		case *a2a.SendStreamingMessageRequest:
			results = h.handler.OnMessageSendStream(ctx, &req.Params)
		case *a2a.TaskResubscriptionRequest:
			results = h.handler.OnResubscribeToTask(ctx, &req.Params)
		default:
			err = &a2a.Error{Kind: a2a.MethodNotFound, Msg: fmt.Sprintf("unsupported streaming method %q", method)}
			yield(a2a.NewErrorResponse(id, err))
			return
		}

		for res, resErr := range results {
			if resErr != nil {
				err = resErr
				yield(a2a.NewErrorResponse(id, err))
				return
			}
			h.metrics.RecordStreamFrame(ctx, method)
			if !yield(a2a.NewResponse(id, res)) {
				return
			}
		}
	}
}

// checkCapability rejects the optional methods the agent card does not advertise.
func (h *JSONRPCHandler) checkCapability(method string) error {
	card := h.agentCard
	if card == nil {
		return nil
	}

	switch method {
	case a2a.MethodMessageStream, a2a.MethodTasksResubscribe:
		if !card.Capabilities.Streaming {
			return a2a.NewUnsupportedOperationError("streaming is not supported by this agent")
		}
	case a2a.MethodPushNotificationConfigSet, a2a.MethodPushNotificationConfigGet,
		a2a.MethodPushNotificationConfigList, a2a.MethodPushNotificationConfigDelete:
		if !card.Capabilities.PushNotifications {
			return a2a.NewPushNotificationNotSupportedError()
		}
	case a2a.MethodGetAuthenticatedExtendedCard:
		if !card.SupportsAuthenticatedExtendedCard {
			return a2a.NewAuthenticatedExtendedCardNotConfiguredError()
		}
	}
	return nil
}

func (h *JSONRPCHandler) record(ctx context.Context, req a2a.Request, err error, start time.Time) {
	d := time.Since(start)
	h.metrics.RecordRequest(ctx, req.MethodName(), telemetry.Outcome(err), d)

	attrs := []any{
		slog.String("method", req.MethodName()),
		slog.String("id", req.RequestID().String()),
		slog.Duration("duration", d),
	}
	if err != nil {
		h.logger.WarnContext(ctx, "request failed", append(attrs, slog.Any("error", err))...)
		return
	}
	h.logger.DebugContext(ctx, "request handled", attrs...)
}

// String returns a string representation of the JSONRPCHandler for debugging.
func (h *JSONRPCHandler) String() string {
	return fmt.Sprintf("JSONRPCHandler{has_agent_card: %t, kind_policy: %s}", h.agentCard != nil, h.parser.KindPolicy())
}
