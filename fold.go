// Copyright 2025 The Go A2A Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"context"
	"iter"
	"log/slog"
)

// Projector reconstructs a task from the ordered frames of its stream.
//
// Frames must be applied in delivery order. A Projector is not safe for concurrent use.
type Projector struct {
	task   *Task
	final  bool
	logger *slog.Logger
}

// ProjectorOption configures a [Projector].
type ProjectorOption func(*Projector)

// WithProjectorLogger sets the logger used to trace artifact merges.
func WithProjectorLogger(logger *slog.Logger) ProjectorOption {
	return func(p *Projector) {
		p.logger = logger
	}
}

// NewProjector returns a projector seeded with a copy of task. A nil task starts an empty
// projection that adopts the identifiers of the first frame.
func NewProjector(task *Task, opts ...ProjectorOption) *Projector {
	p := &Projector{
		task:   task.Clone(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.task != nil && p.task.Status.State.IsTerminal() {
		p.final = true
	}
	return p
}

// Task returns a copy of the current projection, or nil if nothing was applied to an empty projection.
func (p *Projector) Task() *Task {
	return p.task.Clone()
}

// Final reports whether the stream of the projected task has ended.
func (p *Projector) Final() bool {
	return p.final
}

// Apply folds one frame into the projection.
//
// On error the projection is left unchanged.
func (p *Projector) Apply(ev Event) error {
	return p.ApplyContext(context.Background(), ev)
}

// ApplyContext is like [Projector.Apply] and passes ctx to the logger.
func (p *Projector) ApplyContext(ctx context.Context, ev Event) error {
	if ev == nil {
		return protocolErrorf("nil frame")
	}
	if p.task != nil {
		if p.final {
			return protocolErrorf("frame %s for task %s after the final frame (state %s)", ev, p.task.ID, p.task.Status.State)
		}
		if ev.GetTaskID() != p.task.ID {
			return protocolErrorf("frame for task %s applied to projection of task %s", ev.GetTaskID(), p.task.ID)
		}
	}

	switch ev := ev.(type) {
	case *TaskStatusUpdateEvent:
		p.ensureTask(ev)
		p.applyStatus(ev)
	case *TaskArtifactUpdateEvent:
		if ev.Artifact == nil {
			return schemaErrorf("artifact", "required")
		}
		if ev.Append && (p.task == nil || p.task.Artifact(ev.Artifact.ArtifactID) == nil) {
			return protocolErrorf("append to unknown artifact %s of task %s", ev.Artifact.ArtifactID, ev.TaskID)
		}
		p.ensureTask(ev)
		p.applyArtifact(ctx, ev)
	default:
		return schemaErrorf("kind", "unsupported frame %T", ev)
	}
	return nil
}

func (p *Projector) ensureTask(ev Event) {
	if p.task != nil {
		if p.task.ContextID == "" {
			p.task.ContextID = ev.GetContextID()
		}
		return
	}
	p.task = &Task{
		ID:        ev.GetTaskID(),
		ContextID: ev.GetContextID(),
		Status:    TaskStatus{State: TaskStateSubmitted},
	}
}

func (p *Projector) applyStatus(ev *TaskStatusUpdateEvent) {
	task := p.task
	if msg := ev.Status.Message; msg != nil {
		n := len(task.History)
		if n == 0 || task.History[n-1].MessageID != msg.MessageID {
			task.History = append(task.History, msg.Clone())
		}
	}
	task.Status = ev.Status.Clone()
	if ev.Final || task.Status.State.IsTerminal() {
		p.final = true
	}
}

func (p *Projector) applyArtifact(ctx context.Context, ev *TaskArtifactUpdateEvent) {
	task := p.task
	art := ev.Artifact

	idx := -1
	for i, a := range task.Artifacts {
		if a.ArtifactID == art.ArtifactID {
			idx = i
			break
		}
	}

	switch {
	case ev.Append:
		p.logger.DebugContext(ctx, "appending parts to artifact", slog.String("artifact_id", art.ArtifactID), slog.String("task_id", task.ID), slog.Int("parts", len(art.Parts)))
		existing := task.Artifacts[idx]
		existing.Parts = append(existing.Parts, cloneParts(art.Parts)...)
	case idx == -1:
		p.logger.DebugContext(ctx, "adding artifact", slog.String("artifact_id", art.ArtifactID), slog.String("task_id", task.ID))
		task.Artifacts = append(task.Artifacts, art.Clone())
	default:
		p.logger.DebugContext(ctx, "replacing artifact", slog.String("artifact_id", art.ArtifactID), slog.String("task_id", task.ID))
		task.Artifacts[idx] = art.Clone()
	}
}

// ApplyResult folds one item of a message/stream or tasks/resubscribe stream.
//
// A [*Task] replaces the projection, a [*Message] ends the stream, and events are applied with [Projector.Apply].
func (p *Projector) ApplyResult(r StreamResult) error {
	switch r := r.(type) {
	case *Task:
		if p.final {
			return protocolErrorf("task snapshot %s after the final frame", r.ID)
		}
		if p.task != nil && p.task.ID != r.ID {
			return protocolErrorf("task snapshot %s applied to projection of task %s", r.ID, p.task.ID)
		}
		p.task = r.Clone()
		if r.Status.State.IsTerminal() {
			p.final = true
		}
		return nil
	case *Message:
		if p.final {
			return protocolErrorf("message %s after the final frame", r.MessageID)
		}
		p.final = true
		return nil
	case Event:
		return p.Apply(r)
	default:
		return schemaErrorf("kind", "unsupported stream result %T", r)
	}
}

// ApplyEvent returns the result of folding a single frame into a copy of task.
//
// The task is not modified. A task already in a terminal state accepts no frames.
func ApplyEvent(task *Task, ev Event) (*Task, error) {
	p := NewProjector(task)
	if err := p.Apply(ev); err != nil {
		return nil, err
	}
	return p.task, nil
}

// Fold applies the frames of events in order to a copy of task and returns the projection.
//
// Folding stops at the first error, which is returned together with the projection built so far.
func Fold(task *Task, events iter.Seq[Event]) (*Task, error) {
	p := NewProjector(task)
	for ev := range events {
		if err := p.Apply(ev); err != nil {
			return p.task, err
		}
	}
	return p.task, nil
}
