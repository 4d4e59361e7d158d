// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"github.com/go-json-experiment/json"
)

// Event is an incremental update of a task delivered on a stream.
//
// The implementations are [*TaskStatusUpdateEvent] and [*TaskArtifactUpdateEvent].
type Event interface {
	StreamResult

	// GetTaskID returns the identifier of the task the event belongs to.
	GetTaskID() string
	// GetContextID returns the context of the task the event belongs to.
	GetContextID() string

	isEvent()
}

// TaskStatusUpdateEvent notifies a change of task status.
type TaskStatusUpdateEvent struct {
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	// Final marks the end of the stream for the task.
	Final    bool           `json:"final"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// TaskArtifactUpdateEvent delivers a new artifact or a chunk of one.
type TaskArtifactUpdateEvent struct {
	TaskID    string    `json:"taskId"`
	ContextID string    `json:"contextId"`
	Artifact  *Artifact `json:"artifact"`
	// Append concatenates the parts onto the artifact with the same identifier
	// instead of replacing it.
	Append bool `json:"append,omitzero"`
	// LastChunk marks the last chunk of the artifact.
	LastChunk bool           `json:"lastChunk,omitzero"`
	Metadata  map[string]any `json:"metadata,omitzero"`
}

var (
	_ Event = (*TaskStatusUpdateEvent)(nil)
	_ Event = (*TaskArtifactUpdateEvent)(nil)
)

func (e *TaskStatusUpdateEvent) GetTaskID() string      { return e.TaskID }
func (e *TaskStatusUpdateEvent) GetContextID() string   { return e.ContextID }
func (e *TaskArtifactUpdateEvent) GetTaskID() string    { return e.TaskID }
func (e *TaskArtifactUpdateEvent) GetContextID() string { return e.ContextID }

func (*TaskStatusUpdateEvent) GetKind() Kind   { return KindStatusUpdate }
func (*TaskArtifactUpdateEvent) GetKind() Kind { return KindArtifactUpdate }

func (*TaskStatusUpdateEvent) isEvent()   {}
func (*TaskArtifactUpdateEvent) isEvent() {}

func (*TaskStatusUpdateEvent) isStreamResult()   {}
func (*TaskArtifactUpdateEvent) isStreamResult() {}

func (*TaskStatusUpdateEvent) isResult()   {}
func (*TaskArtifactUpdateEvent) isResult() {}

// String implements [fmt.Stringer].
func (e *TaskStatusUpdateEvent) String() string {
	return fmt.Sprintf("status-update(task=%s, state=%s, final=%t)", e.TaskID, e.Status.State, e.Final)
}

// String implements [fmt.Stringer].
func (e *TaskArtifactUpdateEvent) String() string {
	id := ""
	if e.Artifact != nil {
		id = e.Artifact.ArtifactID
	}
	return fmt.Sprintf("artifact-update(task=%s, artifact=%s, append=%t, lastChunk=%t)", e.TaskID, id, e.Append, e.LastChunk)
}

// IsFinal reports whether ev ends the stream of its task.
func IsFinal(ev Event) bool {
	switch ev := ev.(type) {
	case *TaskStatusUpdateEvent:
		return ev.Final || ev.Status.State.IsTerminal()
	default:
		return false
	}
}

// MarshalJSON implements [json.Marshaler].
func (e *TaskStatusUpdateEvent) MarshalJSON() ([]byte, error) {
	type alias TaskStatusUpdateEvent
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindStatusUpdate, (*alias)(e)})
}

// MarshalJSON implements [json.Marshaler].
func (e *TaskArtifactUpdateEvent) MarshalJSON() ([]byte, error) {
	type alias TaskArtifactUpdateEvent
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindArtifactUpdate, (*alias)(e)})
}

// UnmarshalJSON implements [json.Unmarshaler].
func (e *TaskStatusUpdateEvent) UnmarshalJSON(data []byte) error {
	v, err := unmarshalWith(data, defaultParser.eventOf(KindStatusUpdate))
	if err != nil {
		return err
	}
	*e = *v.(*TaskStatusUpdateEvent)
	return nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (e *TaskArtifactUpdateEvent) UnmarshalJSON(data []byte) error {
	v, err := unmarshalWith(data, defaultParser.eventOf(KindArtifactUpdate))
	if err != nil {
		return err
	}
	*e = *v.(*TaskArtifactUpdateEvent)
	return nil
}

// ParseEvent validates an untyped payload as a stream event with the default parser.
func ParseEvent(v any) (Event, error) {
	return defaultParser.ParseEvent(v)
}

// ParseEvent validates an untyped payload as a stream event.
func (p *Parser) ParseEvent(v any) (Event, error) {
	return p.event(v, "")
}

func (p *Parser) event(v any, path fieldPath) (Event, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	return selectVariant(p, o,
		variant[Event]{KindStatusUpdate, func(o object) (Event, error) { return p.statusUpdate(o) }},
		variant[Event]{KindArtifactUpdate, func(o object) (Event, error) { return p.artifactUpdate(o) }},
	)
}

func (p *Parser) eventOf(want Kind) func(v any, path fieldPath) (Event, error) {
	return func(v any, path fieldPath) (Event, error) {
		ev, err := p.event(v, path)
		if err != nil {
			return nil, err
		}
		if ev.GetKind() != want {
			return nil, schemaErrorf(path.field("kind"), "got %q, want %q", ev.GetKind(), want)
		}
		return ev, nil
	}
}

func (p *Parser) statusUpdate(o object) (*TaskStatusUpdateEvent, error) {
	ev := &TaskStatusUpdateEvent{}
	var err error
	if ev.TaskID, err = o.nonEmptyString("taskId"); err != nil {
		return nil, err
	}
	if ev.ContextID, err = o.requiredString("contextId"); err != nil {
		return nil, err
	}
	status, err := o.child("status")
	if err != nil {
		return nil, err
	}
	if ev.Status, err = p.taskStatus(status); err != nil {
		return nil, err
	}
	if ev.Final, err = o.requiredBool("final"); err != nil {
		return nil, err
	}
	if ev.Metadata, err = o.optionalMap("metadata"); err != nil {
		return nil, err
	}
	return ev, nil
}

func (p *Parser) artifactUpdate(o object) (*TaskArtifactUpdateEvent, error) {
	ev := &TaskArtifactUpdateEvent{}
	var err error
	if ev.TaskID, err = o.nonEmptyString("taskId"); err != nil {
		return nil, err
	}
	if ev.ContextID, err = o.requiredString("contextId"); err != nil {
		return nil, err
	}
	v, ok := o.lookup("artifact")
	if !ok {
		return nil, schemaErrorf(o.path.field("artifact"), "required")
	}
	if ev.Artifact, err = p.artifact(v, o.path.field("artifact")); err != nil {
		return nil, err
	}
	if ev.Append, err = o.optionalBool("append"); err != nil {
		return nil, err
	}
	if ev.LastChunk, err = o.optionalBool("lastChunk"); err != nil {
		return nil, err
	}
	if ev.Metadata, err = o.optionalMap("metadata"); err != nil {
		return nil, err
	}
	return ev, nil
}

// StreamResult is one item of a message/stream or tasks/resubscribe response stream.
//
// The implementations are [*Message], [*Task], [*TaskStatusUpdateEvent] and [*TaskArtifactUpdateEvent].
type StreamResult interface {
	Result

	// GetKind returns the discriminator of the result.
	GetKind() Kind

	isStreamResult()
}

// SendMessageResult is the result of message/send: a [*Message] or a [*Task].
type SendMessageResult interface {
	StreamResult

	isSendMessageResult()
}

var (
	_ SendMessageResult = (*Message)(nil)
	_ SendMessageResult = (*Task)(nil)
)

func (*Message) GetKind() Kind { return KindMessage }
func (*Task) GetKind() Kind    { return KindTask }

func (*Message) isStreamResult() {}
func (*Task) isStreamResult()    {}

func (*Message) isSendMessageResult() {}
func (*Task) isSendMessageResult()    {}

// ParseStreamResult validates an untyped payload as a stream item with the default parser.
func ParseStreamResult(v any) (StreamResult, error) {
	return defaultParser.ParseStreamResult(v)
}

// ParseStreamResult validates an untyped payload as a stream item.
func (p *Parser) ParseStreamResult(v any) (StreamResult, error) {
	return p.streamResult(v, "")
}

func (p *Parser) streamResult(v any, path fieldPath) (StreamResult, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	return selectVariant(p, o,
		variant[StreamResult]{KindMessage, func(o object) (StreamResult, error) { return p.messageBody(o) }},
		variant[StreamResult]{KindTask, func(o object) (StreamResult, error) { return p.taskBody(o) }},
		variant[StreamResult]{KindStatusUpdate, func(o object) (StreamResult, error) { return p.statusUpdate(o) }},
		variant[StreamResult]{KindArtifactUpdate, func(o object) (StreamResult, error) { return p.artifactUpdate(o) }},
	)
}

func (p *Parser) sendMessageResult(v any, path fieldPath) (SendMessageResult, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	return selectVariant(p, o,
		variant[SendMessageResult]{KindMessage, func(o object) (SendMessageResult, error) { return p.messageBody(o) }},
		variant[SendMessageResult]{KindTask, func(o object) (SendMessageResult, error) { return p.taskBody(o) }},
	)
}
