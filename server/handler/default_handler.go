// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	a2a "github.com/go-a2a/a2a-wire"
	"github.com/go-a2a/a2a-wire/auth"
	"github.com/go-a2a/a2a-wire/server/agent"
	"github.com/go-a2a/a2a-wire/server/event"
	"github.com/go-a2a/a2a-wire/server/push"
	"github.com/go-a2a/a2a-wire/server/task"
)

// DefaultRequestHandler is the [RequestHandler] that runs an [agent.Executor]
// per incoming message and keeps the task store in sync with its frames.
type DefaultRequestHandler struct {
	executor       agent.Executor
	store          task.Store
	queues         *event.Manager
	contextBuilder agent.ContextBuilder
	pushStore      push.ConfigStore
	pushSender     *push.Sender
	extendedCard   *a2a.AgentCard
	logger         *slog.Logger

	mu   sync.Mutex
	runs map[string]*run
}

var _ RequestHandler = (*DefaultRequestHandler)(nil)

// Option configures a [DefaultRequestHandler].
type Option func(*DefaultRequestHandler)

// WithQueueManager sets the manager of the per-task event queues.
func WithQueueManager(m *event.Manager) Option {
	return func(h *DefaultRequestHandler) {
		h.queues = m
	}
}

// WithContextBuilder sets the builder of the executor request contexts.
func WithContextBuilder(b agent.ContextBuilder) Option {
	return func(h *DefaultRequestHandler) {
		h.contextBuilder = b
	}
}

// WithPushNotifications enables the push notification methods. A nil sender
// stores configs without delivering notifications.
func WithPushNotifications(store push.ConfigStore, sender *push.Sender) Option {
	return func(h *DefaultRequestHandler) {
		h.pushStore = store
		h.pushSender = sender
	}
}

// WithExtendedAgentCard sets the card returned to authenticated callers of
// agent/getAuthenticatedExtendedCard.
func WithExtendedAgentCard(card *a2a.AgentCard) Option {
	return func(h *DefaultRequestHandler) {
		h.extendedCard = card
	}
}

// WithLogger sets the logger of the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *DefaultRequestHandler) {
		h.logger = logger
	}
}

// NewDefaultRequestHandler creates a DefaultRequestHandler.
func NewDefaultRequestHandler(executor agent.Executor, store task.Store, opts ...Option) *DefaultRequestHandler {
	if executor == nil {
		panic("agent executor cannot be nil")
	}
	if store == nil {
		panic("task store cannot be nil")
	}

	h := &DefaultRequestHandler{
		executor: executor,
		store:    store,
		logger:   slog.Default(),
		runs:     make(map[string]*run),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.queues == nil {
		h.queues = event.NewManager(event.WithManagerLogger(h.logger))
	}
	if h.contextBuilder == nil {
		h.contextBuilder = agent.NewSimpleContextBuilder(store)
	}

	return h
}

// OnGetTask returns the stored task, truncated to the requested history length.
func (h *DefaultRequestHandler) OnGetTask(ctx context.Context, params *a2a.TaskQueryParams) (*a2a.Task, error) {
	t, err := h.loadTask(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	return t.WithHistoryLength(params.HistoryLength), nil
}

// OnCancelTask asks the executor to cancel a running task and waits for the
// canceled state. A task without a running executor is canceled directly.
func (h *DefaultRequestHandler) OnCancelTask(ctx context.Context, params *a2a.TaskIDParams) (*a2a.Task, error) {
	t, err := h.loadTask(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if t.Status.State.IsTerminal() {
		return nil, a2a.NewTaskNotCancelableError(t.ID, t.Status.State)
	}

	r := h.running(t.ID)
	if r == nil {
		t.Status = a2a.NewTaskStatus(a2a.TaskStateCanceled, nil)
		if err := h.store.Save(ctx, t); err != nil {
			return nil, NewServerError("save task", t.ID, err)
		}
		h.notify(ctx, t)
		return t, nil
	}

	if err := h.executor.Cancel(ctx, r.reqCtx, r.queue); err != nil {
		return nil, NewServerError("cancel task", t.ID, err)
	}
	snapshot, err := r.wait(ctx, func(_ int, s *a2a.Task) bool { return s.Status.State.IsTerminal() })
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// OnMessageSend starts the executor on the message.
//
// A blocking call returns once the task reaches a terminal or interrupted
// state, or with the message the agent answered with. A non-blocking call
// returns the submitted task right away.
func (h *DefaultRequestHandler) OnMessageSend(ctx context.Context, params *a2a.MessageSendParams) (a2a.SendMessageResult, error) {
	r, sub, snapshot, err := h.start(ctx, params)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	cfg := params.Configuration
	if !cfg.IsBlocking() {
		return snapshot.WithHistoryLength(historyLength(cfg)), nil
	}

	p := a2a.NewProjector(snapshot, a2a.WithProjectorLogger(h.logger))
	seen := 0
	for {
		res, err := sub.Next(ctx)
		if errors.Is(err, event.ErrQueueClosed) {
			break
		}
		if err != nil {
			return nil, err
		}
		seen++

		if msg, ok := res.(*a2a.Message); ok {
			if _, err := r.waitProcessed(ctx, seen); err != nil {
				return nil, err
			}
			return msg, nil
		}
		if err := p.ApplyResult(res); err != nil {
			return nil, err
		}
		if p.Final() || p.Task().Status.State.IsInterrupted() {
			break
		}
	}

	if _, err := r.waitProcessed(ctx, seen); err != nil {
		return nil, err
	}
	return p.Task().WithHistoryLength(historyLength(cfg)), nil
}

// OnMessageSendStream starts the executor on the message and streams the task
// snapshot followed by the frames of the executor.
func (h *DefaultRequestHandler) OnMessageSendStream(ctx context.Context, params *a2a.MessageSendParams) iter.Seq2[a2a.StreamResult, error] {
	return func(yield func(a2a.StreamResult, error) bool) {
		r, sub, snapshot, err := h.start(ctx, params)
		if err != nil {
			yield(nil, err)
			return
		}
		defer sub.Close()

		if !yield(snapshot.WithHistoryLength(historyLength(params.Configuration)), nil) {
			return
		}
		h.follow(ctx, r, 0, sub, snapshot, yield)
	}
}

// OnResubscribeToTask streams the task followed by the frames the executor
// publishes from now on. A task without a running executor yields its stored
// snapshot only.
//
// The snapshot of a running task covers exactly the frames published before
// the subscription, so that no frame is lost or repeated.
func (h *DefaultRequestHandler) OnResubscribeToTask(ctx context.Context, params *a2a.TaskIDParams) iter.Seq2[a2a.StreamResult, error] {
	return func(yield func(a2a.StreamResult, error) bool) {
		r := h.running(params.ID)
		if r == nil {
			snapshot, err := h.loadTask(ctx, params.ID)
			if err != nil {
				yield(nil, err)
				return
			}
			yield(snapshot, nil)
			return
		}

		sub, published, err := r.queue.TapFrom()
		if err != nil {
			// the executor is done; the persisted snapshot is complete once the run ends
			snapshot, err := r.wait(ctx, func(int, *a2a.Task) bool { return false })
			if err != nil {
				yield(nil, err)
				return
			}
			yield(snapshot, nil)
			return
		}
		defer sub.Close()

		snapshot, err := r.waitProcessed(ctx, published)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(snapshot, nil) || snapshot.Status.State.IsTerminal() {
			return
		}
		h.follow(ctx, r, published, sub, snapshot, yield)
	}
}

// OnSetTaskPushNotificationConfig stores a push notification config of an existing task.
func (h *DefaultRequestHandler) OnSetTaskPushNotificationConfig(ctx context.Context, params *a2a.TaskPushNotificationConfig) (*a2a.TaskPushNotificationConfig, error) {
	if h.pushStore == nil {
		return nil, a2a.NewPushNotificationNotSupportedError()
	}
	if _, err := h.loadTask(ctx, params.TaskID); err != nil {
		return nil, err
	}

	cfg, err := h.pushStore.Set(ctx, params.TaskID, params.PushNotificationConfig)
	if err != nil {
		if errors.Is(err, a2a.ErrSchemaMismatch) {
			return nil, &a2a.Error{Kind: a2a.InvalidParams, Path: "params.pushNotificationConfig", Err: err}
		}
		return nil, NewServerError("set push notification config", params.TaskID, err)
	}

	return &a2a.TaskPushNotificationConfig{TaskID: params.TaskID, PushNotificationConfig: cfg}, nil
}

// OnGetTaskPushNotificationConfig returns a push notification config of a task.
func (h *DefaultRequestHandler) OnGetTaskPushNotificationConfig(ctx context.Context, params *a2a.GetTaskPushNotificationConfigParams) (*a2a.TaskPushNotificationConfig, error) {
	if h.pushStore == nil {
		return nil, a2a.NewPushNotificationNotSupportedError()
	}
	if _, err := h.loadTask(ctx, params.ID); err != nil {
		return nil, err
	}

	cfg, err := h.pushStore.Get(ctx, params.ID, params.PushNotificationConfigID)
	if err != nil {
		return nil, pushConfigError(params.ID, params.PushNotificationConfigID, err)
	}

	return &a2a.TaskPushNotificationConfig{TaskID: params.ID, PushNotificationConfig: cfg}, nil
}

// OnListTaskPushNotificationConfig returns the push notification configs of a task.
func (h *DefaultRequestHandler) OnListTaskPushNotificationConfig(ctx context.Context, params *a2a.ListTaskPushNotificationConfigParams) (a2a.TaskPushNotificationConfigList, error) {
	if h.pushStore == nil {
		return nil, a2a.NewPushNotificationNotSupportedError()
	}
	if _, err := h.loadTask(ctx, params.ID); err != nil {
		return nil, err
	}

	configs, err := h.pushStore.List(ctx, params.ID)
	if err != nil {
		return nil, NewServerError("list push notification configs", params.ID, err)
	}
	list := make(a2a.TaskPushNotificationConfigList, 0, len(configs))
	for _, cfg := range configs {
		list = append(list, &a2a.TaskPushNotificationConfig{TaskID: params.ID, PushNotificationConfig: cfg})
	}

	return list, nil
}

// OnDeleteTaskPushNotificationConfig removes a push notification config of a task.
func (h *DefaultRequestHandler) OnDeleteTaskPushNotificationConfig(ctx context.Context, params *a2a.DeleteTaskPushNotificationConfigParams) error {
	if h.pushStore == nil {
		return a2a.NewPushNotificationNotSupportedError()
	}
	if _, err := h.loadTask(ctx, params.ID); err != nil {
		return err
	}

	if err := h.pushStore.Delete(ctx, params.ID, params.PushNotificationConfigID); err != nil {
		return NewServerError("delete push notification config", params.ID, err)
	}
	return nil
}

// OnGetAuthenticatedExtendedCard returns the extended agent card.
func (h *DefaultRequestHandler) OnGetAuthenticatedExtendedCard(ctx context.Context) (*a2a.AgentCard, error) {
	if h.extendedCard == nil {
		return nil, a2a.NewAuthenticatedExtendedCardNotConfiguredError()
	}
	return h.extendedCard, nil
}

// start registers the task of params and launches the executor.
//
// It returns the run, a subscription opened before the executor started and
// the task snapshot the executor starts from.
func (h *DefaultRequestHandler) start(ctx context.Context, params *a2a.MessageSendParams) (*run, *event.Subscription, *a2a.Task, error) {
	if params == nil || params.Message == nil {
		return nil, nil, nil, invalidParams("params.message", "required")
	}

	msg := params.Message.Clone()
	var current *a2a.Task
	if msg.TaskID != "" {
		if err := h.awaitSettled(ctx, msg.TaskID); err != nil {
			return nil, nil, nil, err
		}
		t, err := h.loadTask(ctx, msg.TaskID)
		if err != nil {
			return nil, nil, nil, err
		}
		if t.Status.State.IsTerminal() {
			return nil, nil, nil, invalidParams("params.message.taskId", "task %s is in terminal state %s", t.ID, t.Status.State)
		}
		if msg.ContextID != "" && msg.ContextID != t.ContextID {
			return nil, nil, nil, invalidParams("params.message.contextId", "task %s belongs to context %s", t.ID, t.ContextID)
		}
		msg.ContextID = t.ContextID
		current = t
	} else {
		msg.TaskID = uuid.NewString()
		if msg.ContextID == "" {
			msg.ContextID = uuid.NewString()
		}
	}

	if cfg := params.Configuration; cfg != nil && cfg.PushNotificationConfig != nil && h.pushStore == nil {
		return nil, nil, nil, a2a.NewPushNotificationNotSupportedError()
	}

	sendParams := *params
	sendParams.Message = msg
	reqCtx, err := h.contextBuilder.Build(ctx, &sendParams, msg.TaskID, msg.ContextID, current, auth.UserFromContext(ctx))
	if err != nil {
		return nil, nil, nil, NewServerError("build request context", msg.TaskID, err)
	}

	var snapshot *a2a.Task
	if current == nil {
		snapshot = a2a.NewTask(msg)
	} else {
		snapshot = current.Clone()
		snapshot.History = append(snapshot.History, msg)
	}

	queue, err := h.queues.Create(snapshot.ID)
	if err != nil {
		if errors.Is(err, &event.TaskQueueExistsError{}) {
			return nil, nil, nil, a2a.NewUnsupportedOperationError(fmt.Sprintf("task %s is still running", snapshot.ID))
		}
		return nil, nil, nil, NewServerError("create event queue", snapshot.ID, err)
	}
	if err := h.store.Save(ctx, snapshot); err != nil {
		h.queues.Close(snapshot.ID)
		return nil, nil, nil, NewServerError("save task", snapshot.ID, err)
	}
	if cfg := params.Configuration; cfg != nil && cfg.PushNotificationConfig != nil {
		if _, err := h.pushStore.Set(ctx, snapshot.ID, *cfg.PushNotificationConfig); err != nil {
			h.queues.Close(snapshot.ID)
			if errors.Is(err, a2a.ErrSchemaMismatch) {
				return nil, nil, nil, &a2a.Error{Kind: a2a.InvalidParams, Path: "params.configuration.pushNotificationConfig", Err: err}
			}
			return nil, nil, nil, NewServerError("set push notification config", snapshot.ID, err)
		}
	}

	persistSub := queue.Subscribe()
	callerSub := queue.Subscribe()
	r := newRun(queue, reqCtx, snapshot)

	h.mu.Lock()
	h.runs[r.taskID] = r
	h.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	go h.persist(runCtx, r, persistSub, snapshot, current == nil)
	go h.execute(runCtx, r)

	h.logger.InfoContext(ctx, "task started", slog.String("task_id", r.taskID), slog.String("context_id", reqCtx.ContextID()))

	return r, callerSub, snapshot, nil
}

// execute runs the executor and closes the queue of the task once it returns.
func (h *DefaultRequestHandler) execute(ctx context.Context, r *run) {
	defer func() {
		if err := h.queues.Close(r.taskID); err != nil {
			h.logger.DebugContext(ctx, "event queue already closed", slog.String("task_id", r.taskID), slog.Any("error", err))
		}
	}()

	err := h.executor.Execute(ctx, r.reqCtx, r.queue)
	if err == nil {
		return
	}

	h.logger.ErrorContext(ctx, "agent execution failed", slog.String("task_id", r.taskID), slog.Any("error", err))
	ev := &a2a.TaskStatusUpdateEvent{
		TaskID:    r.taskID,
		ContextID: r.reqCtx.ContextID(),
		Status:    a2a.NewTaskStatus(a2a.TaskStateFailed, a2a.NewAgentTextMessage(err.Error(), r.reqCtx.ContextID(), r.taskID)),
		Final:     true,
	}
	if err := r.queue.Publish(ctx, ev); err != nil {
		h.logger.WarnContext(ctx, "failed to publish failure status", slog.String("task_id", r.taskID), slog.Any("error", err))
	}
}

// persist folds the frames of a run into the stored task and sends the push
// notifications. It ends when the queue is closed.
func (h *DefaultRequestHandler) persist(ctx context.Context, r *run, sub *event.Subscription, snapshot *a2a.Task, created bool) {
	defer r.finish()
	defer h.forget(r)
	defer sub.Close()

	p := a2a.NewProjector(snapshot, a2a.WithProjectorLogger(h.logger))
	for res := range sub.All(ctx) {
		if _, ok := res.(*a2a.Message); ok {
			// a direct reply leaves no task behind
			if created {
				if err := h.store.Delete(ctx, r.taskID); err != nil && !task.IsNotFound(err) {
					h.logger.WarnContext(ctx, "failed to delete task", slog.String("task_id", r.taskID), slog.Any("error", err))
				}
			}
			r.update(nil)
			continue
		}

		if err := p.ApplyResult(res); err != nil {
			h.logger.WarnContext(ctx, "dropping frame", slog.String("task_id", r.taskID), slog.String("kind", string(res.GetKind())), slog.Any("error", err))
			r.update(nil)
			continue
		}

		t := p.Task()
		if err := h.store.Save(ctx, t); err != nil {
			h.logger.ErrorContext(ctx, "failed to save task", slog.String("task_id", r.taskID), slog.Any("error", err))
		}
		r.update(t)
		h.notify(ctx, t)
	}
}

// follow yields the frames of sub until the final frame, an error, or the
// end of the queue. The final frame is yielded once persisted; skipped counts
// the frames of the run published before sub was opened.
func (h *DefaultRequestHandler) follow(ctx context.Context, r *run, skipped int, sub *event.Subscription, snapshot *a2a.Task, yield func(a2a.StreamResult, error) bool) {
	p := a2a.NewProjector(snapshot, a2a.WithProjectorLogger(h.logger))
	seen := skipped
	for {
		res, err := sub.Next(ctx)
		if errors.Is(err, event.ErrQueueClosed) {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}
		seen++

		if err := p.ApplyResult(res); err != nil {
			yield(nil, err)
			return
		}
		if p.Final() {
			if _, err := r.waitProcessed(ctx, seen); err != nil {
				yield(nil, err)
				return
			}
			yield(res, nil)
			return
		}
		if !yield(res, nil) {
			return
		}
	}
}

// awaitSettled waits for the previous run of taskID to end when it already
// reached a terminal or interrupted state, so that the next turn can start.
func (h *DefaultRequestHandler) awaitSettled(ctx context.Context, taskID string) error {
	r := h.running(taskID)
	if r == nil || !r.settled() {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *DefaultRequestHandler) notify(ctx context.Context, t *a2a.Task) {
	if h.pushSender == nil {
		return
	}
	if err := h.pushSender.SendAll(ctx, t); err != nil {
		h.logger.WarnContext(ctx, "push notification delivery failed", slog.String("task_id", t.ID), slog.Any("error", err))
	}
}

func (h *DefaultRequestHandler) loadTask(ctx context.Context, taskID string) (*a2a.Task, error) {
	t, err := h.store.Get(ctx, taskID)
	switch {
	case task.IsNotFound(err):
		return nil, a2a.NewTaskNotFoundError(taskID)
	case err != nil:
		return nil, NewServerError("load task", taskID, err)
	}
	return t, nil
}

func (h *DefaultRequestHandler) running(taskID string) *run {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs[taskID]
}

func (h *DefaultRequestHandler) forget(r *run) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.runs[r.taskID] == r {
		delete(h.runs, r.taskID)
	}
}

func historyLength(cfg *a2a.MessageSendConfiguration) *int {
	if cfg == nil {
		return nil
	}
	return cfg.HistoryLength
}
